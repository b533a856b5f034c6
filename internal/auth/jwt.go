package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

// Config параметры подписи токенов
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Claims полезная нагрузка токена
type Claims struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Tokens выпускает и проверяет HS256 токены доступа и обновления
type Tokens struct {
	cfg Config
	now func() time.Time
}

func NewTokens(cfg Config) *Tokens {
	return &Tokens{cfg: cfg, now: time.Now}
}

// Identity данные пользователя, попадающие в токен
type Identity struct {
	UserID  int64
	Email   string
	IsAdmin bool
}

func (t *Tokens) Access(id Identity) (string, error) {
	return t.sign(id, tokenAccess, t.cfg.AccessTTL)
}

func (t *Tokens) Refresh(id Identity) (string, error) {
	return t.sign(id, tokenRefresh, t.cfg.RefreshTTL)
}

// AccessTTL время жизни access токена в секундах
func (t *Tokens) AccessTTL() int64 { return int64(t.cfg.AccessTTL.Seconds()) }

func (t *Tokens) sign(id Identity, kind string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		UserID:    id.UserID,
		Email:     id.Email,
		IsAdmin:   id.IsAdmin,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.cfg.Secret))
}

func (t *Tokens) parse(raw, kind string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	}
	if t.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.cfg.Issuer))
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return []byte(t.cfg.Secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != kind || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (t *Tokens) ParseAccess(raw string) (*Claims, error) { return t.parse(raw, tokenAccess) }

func (t *Tokens) ParseRefresh(raw string) (*Claims, error) { return t.parse(raw, tokenRefresh) }
