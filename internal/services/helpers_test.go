package services

import (
	"testing"

	"interpretation-service/internal/config"
	"interpretation-service/internal/database"
	"interpretation-service/internal/logger"

	"github.com/DATA-DOG/go-sqlmock"
)

func newTestLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "debug", Format: "json"})
}

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return &database.DB{DB: db}, mock
}
