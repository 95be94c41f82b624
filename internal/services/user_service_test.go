package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"mybus/internal/auth"
	"mybus/internal/domain"
	"mybus/internal/repositories"
)

var userTestColumns = []string{
	"id", "name", "email", "phone", "password_hash", "role", "status",
	"last_login", "total_bookings", "total_spent", "created_at", "updated_at",
}

func newUserService(t *testing.T) (UserService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	svc := UserService{
		Users:  repositories.UserRepository{DB: db},
		Tokens: auth.NewTokenService("test-secret", time.Hour),
	}
	return svc, mock, func() { _ = db.Close() }
}

func userRowWith(id, email, hash, role string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userTestColumns).
		AddRow(id, "John Doe", email, "9999999999", hash, role, "ACTIVE", nil, 0, 0, now, now)
}

func TestRegisterHashesPasswordAndCoercesRole(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows(userTestColumns))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := svc.Register(RegisterInput{
		Name:     "John Doe",
		Email:    "john@example.com",
		Phone:    "9999999999",
		Password: "secret123",
		Role:     "driver",
	})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}
	if user.Role != "USER" {
		t.Fatalf("unknown role not coerced to USER, got %q", user.Role)
	}
	if user.PasswordHash == "secret123" {
		t.Fatalf("password stored in plaintext")
	}
	if !auth.CheckPassword(user.PasswordHash, "secret123") {
		t.Fatalf("stored hash does not verify original password")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegisterAdminRoleIsKept(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows(userTestColumns))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := svc.Register(RegisterInput{
		Name: "Ops", Email: "ops@example.com", Phone: "1", Password: "p", Role: "admin",
	})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}
	if user.Role != "ADMIN" {
		t.Fatalf("expected ADMIN, got %q", user.Role)
	}
}

func TestRegisterExistingEmailIsConflict(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(userRowWith("u1", "john@example.com", "$2a$10$hash", "USER"))

	_, err := svc.Register(RegisterInput{
		Name: "John", Email: "john@example.com", Phone: "1", Password: "p",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	// No INSERT expectation: nothing may be written.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLoginUnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows(userTestColumns))
	_, _, errUnknown := svc.Login("nobody@example.com", "whatever")

	hash, err := auth.HashPassword("right-password")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(userRowWith("u1", "john@example.com", hash, "USER"))
	_, _, errWrong := svc.Login("john@example.com", "wrong-password")

	if errUnknown == nil || errWrong == nil {
		t.Fatalf("expected both logins to fail")
	}
	if !domain.IsUnauthorized(errUnknown) || !domain.IsUnauthorized(errWrong) {
		t.Fatalf("expected unauthorized, got %v / %v", errUnknown, errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("messages differ: %q vs %q", errUnknown.Error(), errWrong.Error())
	}
}

func TestLoginIssuesTokenWithCurrentRole(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(userRowWith("u1", "admin@example.com", hash, "ADMIN"))
	mock.ExpectExec("UPDATE users SET last_login").
		WillReturnResult(sqlmock.NewResult(0, 1))

	token, user, err := svc.Login("admin@example.com", "secret123")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if user.LastLogin == nil {
		t.Fatalf("last login not set")
	}

	claims, err := svc.Tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "ADMIN" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateProfileEmailConflictWritesNothing(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnRows(userRowWith("u1", "john@example.com", "$2a$10$hash", "USER"))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(userRowWith("u2", "taken@example.com", "$2a$10$hash", "USER"))

	email := "taken@example.com"
	_, err := svc.UpdateProfile("u1", ProfileUpdate{Email: &email})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	// No UPDATE expectation: the original email must stay untouched.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateProfileOwnEmailIsNotAConflict(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnRows(userRowWith("u1", "john@example.com", "$2a$10$hash", "USER"))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(userRowWith("u1", "john@example.com", "$2a$10$hash", "USER"))
	mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnRows(userRowWith("u1", "john@example.com", "$2a$10$hash", "USER"))

	email := "john@example.com"
	if _, err := svc.UpdateProfile("u1", ProfileUpdate{Email: &email}); err != nil {
		t.Fatalf("update error: %v", err)
	}
}
