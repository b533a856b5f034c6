package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost стоимость bcrypt для рабочих хэшей
const DefaultCost = 12

// Passwords хэширование паролей bcrypt
type Passwords struct {
	cost int
}

// NewPasswords cost вне допустимого диапазона bcrypt заменяется на DefaultCost
func NewPasswords(cost int) *Passwords {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Passwords{cost: cost}
}

func (p *Passwords) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify возвращает false для неверного пароля; ошибка только для испорченного хэша
func (p *Passwords) Verify(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
