package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// Merge переносит строки анонимной корзины в корзину пользователя и удаляет
// анонимную корзину. Количество одинаковых товаров складывается, остаток не
// проверяется: это делает оформление заказа.
func (s *CartService) Merge(ctx context.Context, userID int64, sessionKey string) (*domain.Cart, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}
	user := domain.UserOwner(userID)
	if sessionKey == "" {
		return s.Snapshot(ctx, user)
	}

	err := s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		target, err := s.carts.GetOrCreate(ctx, tx, user)
		if err != nil {
			return err
		}
		source, err := s.carts.FindByOwner(ctx, tx, domain.SessionOwner(sessionKey))
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if source.ID == target.ID {
			return nil
		}

		lines, err := s.carts.Items(ctx, tx, source.ID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			existing, err := s.carts.ItemByProduct(ctx, tx, target.ID, line.ProductID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				it := &domain.CartItem{CartID: target.ID, ProductID: line.ProductID, Quantity: line.Quantity}
				if err := s.carts.CreateItem(ctx, tx, it); err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := s.carts.SetItemQuantity(ctx, tx, existing.ID, existing.Quantity+line.Quantity); err != nil {
					return err
				}
			}
		}
		return s.carts.Delete(ctx, tx, source.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.Snapshot(ctx, user)
}
