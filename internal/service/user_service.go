package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/repository"
)

const (
	minPasswordLen = 8
	// bcrypt игнорирует всё после 72 байт
	maxPasswordLen = 72
)

// UserService регистрация, вход и выпуск токенов
type UserService struct {
	db        *gorm.DB
	users     repository.UserRepository
	tokens    *auth.Tokens
	passwords *auth.Passwords
}

func NewUserService(db *gorm.DB, users repository.UserRepository, tokens *auth.Tokens, passwords *auth.Passwords) *UserService {
	return &UserService{db: db, users: users, tokens: tokens, passwords: passwords}
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", ErrInvalidInput
	}
	return strings.ToLower(addr.Address), nil
}

func validPassword(pw string) bool {
	return len(pw) >= minPasswordLen && len(pw) <= maxPasswordLen
}

func (s *UserService) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil || !validPassword(password) {
		return nil, ErrInvalidInput
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = email[:strings.IndexByte(email, '@')]
	}
	return s.create(ctx, email, username, password, false)
}

func (s *UserService) create(ctx context.Context, email, username, password string, admin bool) (*domain.User, error) {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Email: email, Username: username, PasswordHash: hash, IsAdmin: admin}
	if err := s.users.Create(ctx, s.db, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

// Login проверяет пароль и выпускает пару токенов
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	u, err := s.users.GetByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	ok, err := s.passwords.Verify(u.PasswordHash, password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}
	pair, err := s.issue(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Refresh выпускает новую пару по действующему refresh токену
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}
	// флаг администратора и сама учётная запись перечитываются, старому токену не верим
	u, err := s.users.GetByID(ctx, s.db, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return s.issue(u)
}

func (s *UserService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, s.db, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

// Authenticate разбирает access токен
func (s *UserService) Authenticate(raw string) (*auth.Claims, error) {
	c, err := s.tokens.ParseAccess(raw)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return c, nil
}

// EnsureAdmin создаёт администратора или выдаёт права существующей учётной записи.
// Пароль существующей записи не меняется.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil || !validPassword(password) {
		return nil, ErrInvalidInput
	}
	u, err := s.users.GetByEmail(ctx, s.db, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.create(ctx, email, "admin", password, true)
	case err != nil:
		return nil, err
	case u.IsAdmin:
		return u, nil
	}
	u.IsAdmin = true
	if err := s.users.Update(ctx, s.db, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) issue(u *domain.User) (*domain.TokenPair, error) {
	id := auth.Identity{UserID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
	access, err := s.tokens.Access(id)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Refresh(id)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.tokens.AccessTTL(),
		TokenType:    "Bearer",
	}, nil
}
