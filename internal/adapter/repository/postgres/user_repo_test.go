package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/gobalance/internal/domain"
)

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	repo := newUserRepository(mockPool)
	err := repo.Create(context.Background(), &domain.User{ID: "u1", Email: "a@example.com"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserRepositoryGetByEmail(t *testing.T) {
	mockPool := newMockPool(t)
	now := time.Now().UTC()
	columns := []string{"id", "email", "first_name", "last_name", "timezone", "hashed_password", "created_at", "updated_at"}

	mockPool.ExpectQuery("FROM users WHERE LOWER\\(email\\)").
		WithArgs("a@example.com").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("u1", "a@example.com", "Ada", "Lovelace", "UTC", "hash", now, now))
	mockPool.ExpectQuery("FROM users WHERE LOWER\\(email\\)").
		WithArgs("missing@example.com").
		WillReturnRows(pgxmock.NewRows(columns))

	repo := newUserRepository(mockPool)

	user, err := repo.GetByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FullName() != "Ada Lovelace" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := repo.GetByEmail(context.Background(), "missing@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestUserRepositoryDeleteMissing(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec("DELETE FROM users").
		WithArgs("u404").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := newUserRepository(mockPool)
	if err := repo.Delete(context.Background(), "u404"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
