package service

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/repository"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type UserService interface {
	// Register creates a user. The very first user becomes admin; after that
	// only an admin actor may register users.
	Register(ctx context.Context, actor *dto.Actor, req *dto.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	// Drivers lists the users a delivery can be assigned to.
	Drivers(ctx context.Context) ([]*dto.DriverResponse, error)
}

type userServiceImpl struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewUserService(
	userRepo repository.UserRepository,
	jwtSecret []byte,
	jwtTTL time.Duration,
) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

func (s *userServiceImpl) Register(ctx context.Context, actor *dto.Actor, req *dto.RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		return nil, newError(KindValidation, "a valid email is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, newError(KindValidation, "name is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, newError(KindValidation, "password must be at least %d characters", minPasswordLength)
	}

	role := req.Role
	if role == "" {
		role = model.RoleStaff
	}
	if !role.Valid() {
		return nil, newError(KindValidation, "unknown role %q", role)
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count == 0 {
		role = model.RoleAdmin
	} else {
		if actor == nil {
			return nil, newError(KindUnauthorized, "authentication required")
		}
		if actor.Role != model.RoleAdmin {
			return nil, newError(KindForbidden, "only admins can register users")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(KindConflict, "email %s is already registered", email)
		}
		return nil, fmt.Errorf("store user: %w", err)
	}

	return user, nil
}

func (s *userServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindUnauthorized, "invalid credentials")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, newError(KindUnauthorized, "invalid credentials")
	}

	now := time.Now().UTC()
	claims := dto.AuthClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

func (s *userServiceImpl) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

func (s *userServiceImpl) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userServiceImpl) Drivers(ctx context.Context) ([]*dto.DriverResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}

	drivers := make([]*dto.DriverResponse, 0, len(users))
	for _, user := range users {
		drivers = append(drivers, &dto.DriverResponse{ID: user.ID, Name: user.Name})
	}
	return drivers, nil
}
