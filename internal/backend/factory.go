package backend

import (
	"fmt"

	"painel/internal/amqp"
	"painel/internal/log"
	"painel/internal/services"
	"painel/internal/storage"
	"painel/internal/storage/memory"
)

// Factory builds backends, logging what it initialized.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentStorage)}
}

// Create opens the repository and, when configured, the AMQP publisher.
// An unreachable broker is logged and the service runs without alerts.
func (f *Factory) Create(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var repo storage.Repository
	switch cfg.Type {
	case SQLite:
		sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		repo = sqliteRepo
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	default:
		repo = memory.New()
		f.logger.Info("Initialized memory backend")
	}

	var (
		amqpClient *amqp.Client
		publisher  services.AlertPublisher
	)
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without alerts", log.FieldError, err)
		} else {
			amqpClient, publisher = client, client
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	return &Result{
		Service: services.NewBudgetService(repo, publisher),
		Repo:    repo,
		AMQP:    amqpClient,
	}, nil
}
