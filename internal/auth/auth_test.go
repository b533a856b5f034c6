package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func testTokens() *Tokens {
	return NewTokens(Config{Secret: "test-secret", Issuer: "storefront-test", AccessTTL: 15 * time.Minute, RefreshTTL: time.Hour})
}

func TestTokens_AccessRoundTrip(t *testing.T) {
	tk := testTokens()
	raw, err := tk.Access(Identity{UserID: 7, Email: "a@example.com", IsAdmin: true})
	if err != nil {
		t.Fatalf("access: %v", err)
	}
	c, err := tk.ParseAccess(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UserID != 7 || c.Email != "a@example.com" || !c.IsAdmin || c.Subject != "7" {
		t.Fatalf("unexpected claims: %+v", c)
	}
	if tk.AccessTTL() != 900 {
		t.Fatalf("ttl %d", tk.AccessTTL())
	}
}

func TestTokens_KindIsChecked(t *testing.T) {
	tk := testTokens()
	refresh, _ := tk.Refresh(Identity{UserID: 1})
	if _, err := tk.ParseAccess(refresh); err != ErrInvalidToken {
		t.Fatalf("refresh token accepted as access: %v", err)
	}
	if _, err := tk.ParseRefresh(refresh); err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
}

func TestTokens_Expired(t *testing.T) {
	tk := testTokens()
	raw, _ := tk.Access(Identity{UserID: 1})
	tk.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := tk.ParseAccess(raw); err != ErrExpiredToken {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestTokens_WrongSecret(t *testing.T) {
	raw, _ := testTokens().Access(Identity{UserID: 1})
	other := NewTokens(Config{Secret: "other", Issuer: "storefront-test", AccessTTL: time.Minute})
	if _, err := other.ParseAccess(raw); err != ErrInvalidToken {
		t.Fatalf("expected invalid, got %v", err)
	}
	if _, err := other.ParseAccess("garbage"); err != ErrInvalidToken {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestPasswords(t *testing.T) {
	p := NewPasswords(bcrypt.MinCost)
	hash, err := p.Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ok, err := p.Verify(hash, "s3cret-pass"); err != nil || !ok {
		t.Fatalf("verify: %v %v", ok, err)
	}
	if ok, err := p.Verify(hash, "wrong"); err != nil || ok {
		t.Fatalf("wrong password verified: %v %v", ok, err)
	}
	if _, err := p.Verify("not-a-hash", "x"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
}
