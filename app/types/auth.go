package types

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

const maxNameLength = 255

// MinPasswordLength is the floor applied at the request boundary. The
// configured password policy may raise it further.
const MinPasswordLength = 8

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72

// FieldErrors maps a request field to the reason it was rejected.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return strings.Join(parts, "; ")
}

func (e FieldErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	CalorieGoal     *int64 `json:"calorie_goal,omitempty"`
}

func NewRegisterRequestFromContext(ctx echo.Context) (*RegisterRequest, error) {
	var body RegisterRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *RegisterRequest) Validate() error {
	errs := FieldErrors{}

	name := strings.TrimSpace(r.Name)
	switch {
	case name == "":
		errs["name"] = "name is required"
	case utf8.RuneCountInString(name) > maxNameLength:
		errs["name"] = fmt.Sprintf("name must be at most %d characters", maxNameLength)
	}

	if msg := validateEmail(r.Email); msg != "" {
		errs["email"] = msg
	}

	switch {
	case len(r.Password) < MinPasswordLength:
		errs["password"] = fmt.Sprintf("password must be at least %d characters long", MinPasswordLength)
	case len(r.Password) > MaxPasswordBytes:
		errs["password"] = fmt.Sprintf("password must be at most %d bytes long", MaxPasswordBytes)
	}
	if r.PasswordConfirm != r.Password {
		errs["password_confirm"] = "passwords do not match"
	}

	if r.CalorieGoal != nil && *r.CalorieGoal <= 0 {
		errs["calorie_goal"] = "calorie_goal must be greater than 0"
	}

	return errs.orNil()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewLoginRequestFromContext(ctx echo.Context) (*LoginRequest, error) {
	var body LoginRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *LoginRequest) Validate() error {
	errs := FieldErrors{}
	if msg := validateEmail(r.Email); msg != "" {
		errs["email"] = msg
	}
	if r.Password == "" {
		errs["password"] = "password is required"
	}

	return errs.orNil()
}

// RefreshTokenRequest is the body of both refresh and logout.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func NewRefreshTokenRequestFromContext(ctx echo.Context) (*RefreshTokenRequest, error) {
	var body RefreshTokenRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *RefreshTokenRequest) Validate() error {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return FieldErrors{"refresh_token": "refresh_token is required"}
	}

	return nil
}

// validateEmail accepts a bare addr-spec only; display-name forms such as
// "Ana <ana@example.com>" are rejected.
func validateEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return "email is required"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "email is not a valid address"
	}
	if at := strings.LastIndex(email, "@"); at < 1 || !strings.Contains(email[at+1:], ".") {
		return "email is not a valid address"
	}

	return ""
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// value. The scheme is matched case-insensitively.
func ParseBearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
