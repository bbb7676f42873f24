package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"interpretation-service/internal/config"
	"interpretation-service/internal/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return &DB{DB: sqlDB}, mock
}

func TestHealth(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("connection reset"))

	if err := db.Health(); err != nil {
		t.Fatalf("expected health ok, got %v", err)
	}
	if err := db.Health(); err == nil {
		t.Fatalf("expected ping failure to surface")
	}

	var missing *DB
	if err := missing.Health(); err == nil {
		t.Fatalf("expected error for nil db health")
	}
	if err := missing.Close(); err != nil {
		t.Fatalf("expected nil error on nil db close, got %v", err)
	}
}

func TestConnect_Failure(t *testing.T) {
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	cfg := &config.DatabaseConfig{Host: "127.0.0.1", Port: "0", User: "interpret_user", Password: "p", DBName: "interpretation", SSLMode: "disable"}
	if _, err := Connect(cfg, log); err == nil {
		t.Fatalf("expected connect error")
	}
}

func TestWithTx_Commit(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE jobs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE jobs SET status = 'cancelled'")
		return err
	})
	if err != nil {
		t.Fatalf("expected commit, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	conflict := errors.New("invalid transition")
	err := db.WithTx(context.Background(), func(tx *sql.Tx) error { return conflict })
	if !errors.Is(err, conflict) {
		t.Fatalf("expected callback error returned as is, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic to propagate")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	}()
	_ = db.WithTx(context.Background(), func(tx *sql.Tx) error { panic("boom") })
}

func TestWithTx_BeginAndCommitErrors(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))
	if err := db.WithTx(context.Background(), func(*sql.Tx) error { return nil }); err == nil {
		t.Fatalf("expected begin error")
	}

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
	if err := db.WithTx(context.Background(), func(*sql.Tx) error { return nil }); err == nil {
		t.Fatalf("expected commit error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"wrapped unique violation", fmt.Errorf("insert job: %w", &pq.Error{Code: UniqueViolation}), true},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
		{"plain error", errors.New("plain"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Fatalf("IsUniqueViolation = %v, want %v", got, tt.want)
			}
		})
	}
}
