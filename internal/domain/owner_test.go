package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCartOwner(t *testing.T) {
	u := UserOwner(7)
	if id, ok := u.UserID(); !ok || id != 7 {
		t.Fatalf("user owner: %v %v", id, ok)
	}
	if _, ok := u.SessionKey(); ok {
		t.Fatalf("user owner must not carry a session")
	}
	if !u.Valid() || u.IsAnonymous() {
		t.Fatalf("user owner flags wrong")
	}

	s := SessionOwner("abc")
	if key, ok := s.SessionKey(); !ok || key != "abc" {
		t.Fatalf("session owner: %v %v", key, ok)
	}
	if _, ok := s.UserID(); ok {
		t.Fatalf("session owner must not carry a user")
	}
	if !s.IsAnonymous() || s.String() != "session:abc" {
		t.Fatalf("session owner flags wrong: %s", s)
	}

	if (CartOwner{}).Valid() || SessionOwner("").Valid() || UserOwner(0).Valid() {
		t.Fatalf("expected invalid owners")
	}
}

func TestCartOwnerFromColumns(t *testing.T) {
	uid := int64(3)
	c := Cart{UserID: &uid}
	if id, ok := c.Owner().UserID(); !ok || id != 3 {
		t.Fatalf("owner from user column")
	}
	key := "k"
	c = Cart{SessionKey: &key}
	if k, ok := c.Owner().SessionKey(); !ok || k != "k" {
		t.Fatalf("owner from session column")
	}
}

func TestCartTotals(t *testing.T) {
	c := Cart{Items: []CartItem{
		{Quantity: 2, Product: Product{Price: decimal.RequireFromString("29.99")}},
		{Quantity: 1, Product: Product{Price: decimal.RequireFromString("15.00")}},
	}}
	if c.TotalItems() != 3 {
		t.Fatalf("total items %d", c.TotalItems())
	}
	if !c.Subtotal().Equal(decimal.RequireFromString("74.98")) {
		t.Fatalf("subtotal %s", c.Subtotal())
	}
	if !c.Total().Equal(c.Subtotal()) {
		t.Fatalf("total must equal subtotal")
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if OrderStatus("lost").Valid() {
		t.Fatalf("unknown status accepted")
	}
}
