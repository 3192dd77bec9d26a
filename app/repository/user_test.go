package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-nutrition/app/entity"
	"github.com/vibast-solutions/ms-go-nutrition/app/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

const (
	insertUserQuery  = `(?s)INSERT INTO users \(name, email, password_hash, calorie_goal, created_at\)\s+VALUES \(\?, \?, \?, \?, \?\)`
	findByEmailQuery = `(?s)SELECT id, name, email, password_hash, calorie_goal, created_at\s+FROM users WHERE email = \?`
	findByIDQuery    = `(?s)SELECT id, name, email, password_hash, calorie_goal, created_at\s+FROM users WHERE id = \?`
)

var userColumns = []string{
	"id",
	"name",
	"email",
	"password_hash",
	"calorie_goal",
	"created_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return db, mock, func() { _ = db.Close() }
}

func TestUserRepository_Create(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db)
	now := time.Now()
	user := &entity.User{
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: "hash",
		CalorieGoal:  sql.NullInt64{Int64: 2000, Valid: true},
		CreatedAt:    now,
	}

	mock.ExpectExec(insertUserQuery).
		WithArgs(user.Name, user.Email, user.PasswordHash, user.CalorieGoal, user.CreatedAt).
		WillReturnResult(sqlmock.NewResult(7, 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("expected ID 7, got %d", user.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db)
	user := &entity.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash", CreatedAt: time.Now()}

	mock.ExpectExec(insertUserQuery).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), user)
	if !repository.IsDuplicateEntry(err) {
		t.Fatalf("expected duplicate entry error, got %v", err)
	}
	if user.ID != 0 {
		t.Fatalf("expected ID to stay unset, got %d", user.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uint64(1),
			"Ana",
			"ana@example.com",
			"hash",
			nil,
			now,
		))

	user, err := repo.FindByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if user == nil || user.ID != 1 || user.Name != "Ana" {
		t.Fatalf("unexpected user: %#v", user)
	}
	if user.CalorieGoal.Valid {
		t.Fatalf("expected calorie goal to be null")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db)

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindByEmail(context.Background(), "missing@example.com")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user, got %#v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByID_Error(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db)
	dbErr := errors.New("connection reset")

	mock.ExpectQuery(findByIDQuery).
		WithArgs(uint64(3)).
		WillReturnError(dbErr)

	user, err := repo.FindByID(context.Background(), 3)
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected db error, got %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user on error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_WithTx(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(findByIDQuery).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uint64(2),
			"Luis",
			"luis@example.com",
			"hash",
			int64(1800),
			now,
		))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	user, err := repository.NewUserRepository(tx).FindByID(context.Background(), 2)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if user.CalorieGoal.Int64 != 1800 {
		t.Fatalf("expected calorie goal 1800, got %d", user.CalorieGoal.Int64)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIsDuplicateEntry(t *testing.T) {
	if repository.IsDuplicateEntry(errors.New("boom")) {
		t.Fatalf("plain error must not be a duplicate entry")
	}
	if repository.IsDuplicateEntry(&mysql.MySQLError{Number: 1452}) {
		t.Fatalf("foreign key error must not be a duplicate entry")
	}
	if !repository.IsDuplicateEntry(&mysql.MySQLError{Number: 1062}) {
		t.Fatalf("expected 1062 to be a duplicate entry")
	}
}
