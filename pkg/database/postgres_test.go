package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/wonny/riskscope/pkg/config"
)

func integrationConfig(t *testing.T) *config.Config {
	t.Helper()

	// Skip if DATABASE_URL is not set
	if testing.Short() || os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func TestNew_Disabled(t *testing.T) {
	_, err := New(context.Background(), &config.Config{})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
}

func TestNewWithInvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:             "invalid://url",
			MaxConns:        4,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
	}

	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("Expected error with invalid database URL, got nil")
	}
}

func TestHealthCheckAndSchema(t *testing.T) {
	cfg := integrationConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	// idempotent
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema (second run) failed: %v", err)
	}

	status, err := db.HealthCheck(ctx)
	if err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
	if !status.Healthy {
		t.Error("Expected database to be healthy")
	}
	if status.Stats.MaxConns == 0 {
		t.Error("Expected MaxConns to be greater than 0")
	}

	// Double close should not panic
	db.Close()
	db.Close()
}
