package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-nutrition/app/dto"
	"github.com/vibast-solutions/ms-go-nutrition/app/entity"
	"github.com/vibast-solutions/ms-go-nutrition/app/repository"
	"github.com/vibast-solutions/ms-go-nutrition/app/types"
	"github.com/vibast-solutions/ms-go-nutrition/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("incorrect email or password")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)

type userRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
}

type refreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error
	FindByTokenAndUser(ctx context.Context, token string, userID uint64) (*entity.RefreshToken, error)
	Delete(ctx context.Context, id uint64) error
}

type refreshTokenCreator interface {
	Create(ctx context.Context, token *entity.RefreshToken) error
}

type AuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*dto.TokenBundle, error)
	Login(ctx context.Context, req *types.LoginRequest) (*dto.TokenBundle, error)
	Refresh(ctx context.Context, req *types.RefreshTokenRequest) (*dto.TokenBundle, error)
	Logout(ctx context.Context, req *types.RefreshTokenRequest) error
	CurrentUser(ctx context.Context, accessToken string) (*entity.User, error)
}

type AuthServiceOption func(*authService)

// WithClock overrides the time source used for row timestamps and the
// persisted expiry check.
func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *authService) {
		if now != nil {
			s.now = now
		}
	}
}

// authService keeps no per-request state; all session state lives in the
// refresh_tokens table.
type authService struct {
	db               *sql.DB
	userRepo         userRepository
	refreshTokenRepo refreshTokenRepository
	hasher           PasswordHasher
	tokens           *TokenCodec
	cfg              *config.Config
	now              func() time.Time
}

func NewAuthService(
	db *sql.DB,
	userRepo userRepository,
	refreshTokenRepo refreshTokenRepository,
	hasher PasswordHasher,
	tokens *TokenCodec,
	cfg *config.Config,
	opts ...AuthServiceOption,
) AuthService {
	svc := &authService{
		db:               db,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		hasher:           hasher,
		tokens:           tokens,
		cfg:              cfg,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *authService) Register(ctx context.Context, req *types.RegisterRequest) (bundle *dto.TokenBundle, err error) {
	defer func() { recordOperation(OperationRegister, err) }()

	if err = s.cfg.Password.Policy.Validate(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, types.FieldErrors{"password": err.Error()})
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	passwordHash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, types.FieldErrors{
				"password": fmt.Sprintf("password must be at most %d bytes long", types.MaxPasswordBytes),
			})
		}
		return nil, err
	}

	user := &entity.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	if req.CalorieGoal != nil {
		user.CalorieGoal = sql.NullInt64{Int64: *req.CalorieGoal, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err = repository.NewUserRepository(tx).Create(ctx, user); err != nil {
		// Lost the race against a concurrent registration for the same email.
		if repository.IsDuplicateEntry(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	bundle, err = s.issueSession(ctx, repository.NewRefreshTokenRepository(tx), user.ID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return bundle, nil
}

func (s *authService) Login(ctx context.Context, req *types.LoginRequest) (bundle *dto.TokenBundle, err error) {
	defer func() { recordOperation(OperationLogin, err) }()

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, req.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	// Sessions are additive: existing refresh tokens for this user stay valid.
	return s.issueSession(ctx, s.refreshTokenRepo, user.ID)
}

// Refresh mints a new access token and echoes the presented refresh token.
// The refresh token is not rotated and stays usable until its row expires
// or is logged out.
func (s *authService) Refresh(ctx context.Context, req *types.RefreshTokenRequest) (bundle *dto.TokenBundle, err error) {
	defer func() { recordOperation(OperationRefresh, err) }()

	claims, err := s.tokens.Decode(req.RefreshToken)
	if err != nil || claims.Type != TokenTypeRefresh {
		return nil, ErrInvalidOrExpiredToken
	}
	userID, ok := claims.UserID()
	if !ok {
		return nil, ErrInvalidOrExpiredToken
	}

	row, err := s.refreshTokenRepo.FindByTokenAndUser(ctx, req.RefreshToken, userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrInvalidOrExpiredToken
	}

	// The persisted expiry is authoritative; expired rows are removed when
	// they are next presented.
	if row.Expired(s.now()) {
		if err = s.refreshTokenRepo.Delete(ctx, row.ID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidOrExpiredToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidOrExpiredToken
	}

	accessToken, err := s.tokens.CreateAccessToken(user.ID)
	if err != nil {
		return nil, err
	}

	return s.bundle(accessToken, req.RefreshToken), nil
}

// Logout always succeeds so callers learn nothing about token validity.
func (s *authService) Logout(ctx context.Context, req *types.RefreshTokenRequest) error {
	var err error
	defer func() { recordOperation(OperationLogout, err) }()

	claims, decodeErr := s.tokens.Decode(req.RefreshToken)
	if decodeErr != nil {
		return nil
	}
	userID, ok := claims.UserID()
	if !ok {
		return nil
	}

	row, err := s.refreshTokenRepo.FindByTokenAndUser(ctx, req.RefreshToken, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Logout: refresh token lookup failed")
		return nil
	}
	if row == nil {
		return nil
	}

	if err = s.refreshTokenRepo.Delete(ctx, row.ID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Logout: refresh token delete failed")
		return nil
	}

	return nil
}

// CurrentUser resolves a bearer access token to its user. Refresh tokens are
// rejected here.
func (s *authService) CurrentUser(ctx context.Context, accessToken string) (user *entity.User, err error) {
	defer func() { recordOperation(OperationCurrentUser, err) }()

	claims, err := s.tokens.Decode(accessToken)
	if err != nil || claims.Type != TokenTypeAccess {
		return nil, ErrInvalidOrExpiredToken
	}
	userID, ok := claims.UserID()
	if !ok {
		return nil, ErrInvalidOrExpiredToken
	}

	user, err = s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidOrExpiredToken
	}

	return user, nil
}

func (s *authService) issueSession(ctx context.Context, repo refreshTokenCreator, userID uint64) (*dto.TokenBundle, error) {
	accessToken, err := s.tokens.CreateAccessToken(userID)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.CreateRefreshToken(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	row := &entity.RefreshToken{
		UserID:    userID,
		Token:     refreshToken,
		ExpiresAt: now.Add(s.tokens.RefreshTTL()),
		CreatedAt: now,
	}
	if err = repo.Create(ctx, row); err != nil {
		return nil, err
	}

	return s.bundle(accessToken, refreshToken), nil
}

func (s *authService) bundle(accessToken, refreshToken string) *dto.TokenBundle {
	return &dto.TokenBundle{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    dto.TokenTypeBearer,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}
}
