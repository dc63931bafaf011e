// Package backend assembles the budget service on top of the configured
// storage backend, with the optional alert publisher.
package backend

import (
	"errors"
	"fmt"

	"painel/internal/amqp"
	"painel/internal/config"
	"painel/internal/services"
	"painel/internal/storage"
)

// Type names a storage backend.
type Type string

const (
	Memory Type = config.BackendMemory
	SQLite Type = config.BackendSQLite
)

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	SQLiteDBPath string

	// AMQP is optional; alerts are skipped when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	c := Config{
		Type:         Type(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}
	return c, c.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %q", c.Type)
	}
	if c.Type == SQLite && c.SQLiteDBPath == "" {
		return errors.New("SQLite database path is required for sqlite backend")
	}
	return nil
}

// Result holds the assembled service. Close releases the publisher and the repository.
type Result struct {
	Service *services.BudgetService
	Repo    storage.Repository
	// AMQP is nil when no broker is configured or it was unreachable.
	AMQP *amqp.Client
}

func (r *Result) Close() error {
	return r.Service.Close()
}
