// Package testutil in-memory база для тестов пакетов
package testutil

import (
	"testing"

	"gorm.io/gorm"

	"storefront/internal/repository"
)

// NewDB открывает мигрированную in-memory базу SQLite, которая закрывается по окончании теста
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := repository.Open(repository.DriverSQLite, ":memory:", false)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = repository.Close(db) })
	return db
}
