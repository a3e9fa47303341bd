package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iho/gobalance/internal/domain"
)

// UserUseCase handles registration, authentication and profile management.
type UserUseCase struct {
	userRepo UserRepository
	idGen    IDGenerator
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(userRepo UserRepository, idGen IDGenerator) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		idGen:    idGen,
	}
}

// RegisterInput represents input for creating a user
type RegisterInput struct {
	Email                string
	Password             string
	PasswordConfirmation string
	FirstName            string
	LastName             string
	Timezone             string
}

// Register creates a new user with a hashed password.
func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	now := time.Now().UTC()
	user := &domain.User{
		Email:     normalizeEmail(input.Email),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Timezone:  strings.TrimSpace(input.Timezone),
		CreatedAt: now,
		UpdatedAt: now,
	}

	verr := domain.ValidatePassword(input.Password, input.PasswordConfirmation)
	mergeValidation(verr, user.Validate())
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := uc.ensureEmailAvailable(ctx, user.Email, ""); err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user.ID = uc.idGen.Generate()
	user.HashedPassword = hashedPassword

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, emailTakenAsValidation(err)
	}

	// Don't return hashed password
	user.HashedPassword = ""
	return user, nil
}

// Authenticate verifies user credentials
func (uc *UserUseCase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := verifyPassword(user.HashedPassword, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user.HashedPassword = ""
	return user, nil
}

// GetUser retrieves a user by ID
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.HashedPassword = ""
	return user, nil
}

// UpdateUserInput represents input for updating a user. Nil fields are kept.
type UpdateUserInput struct {
	ID                   string
	Email                *string
	FirstName            *string
	LastName             *string
	Timezone             *string
	Password             *string
	PasswordConfirmation *string
}

// UpdateUser updates profile fields and, when given, the password.
func (uc *UserUseCase) UpdateUser(ctx context.Context, input UpdateUserInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = normalizeEmail(*input.Email)
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Timezone != nil {
		user.Timezone = strings.TrimSpace(*input.Timezone)
	}

	verr := domain.NewValidationError()
	mergeValidation(verr, user.Validate())

	if input.Password != nil {
		confirmation := ""
		if input.PasswordConfirmation != nil {
			confirmation = *input.PasswordConfirmation
		}
		verr.Merge(domain.ValidatePassword(*input.Password, confirmation))
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	if input.Email != nil {
		if err := uc.ensureEmailAvailable(ctx, user.Email, user.ID); err != nil {
			return nil, err
		}
	}

	if input.Password != nil {
		hashedPassword, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashedPassword
	}

	user.UpdatedAt = time.Now().UTC()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, emailTakenAsValidation(err)
	}

	user.HashedPassword = ""
	return user, nil
}

// DeleteUser deletes a user together with their accounts and transactions.
func (uc *UserUseCase) DeleteUser(ctx context.Context, id string) error {
	return uc.userRepo.Delete(ctx, id)
}

func (uc *UserUseCase) ensureEmailAvailable(ctx context.Context, email, ownerID string) error {
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return err
	case existing != nil && existing.ID != ownerID:
		return emailTakenAsValidation(domain.ErrEmailTaken)
	}
	return nil
}

func emailTakenAsValidation(err error) error {
	if !errors.Is(err, domain.ErrEmailTaken) {
		return err
	}
	verr := domain.NewValidationError()
	verr.Add("email", "has already been taken")
	return verr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword hashes a password using bcrypt
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword verifies a password against a hash
func verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
