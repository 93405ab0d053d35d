package startup

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/dfcarvalho/miolo/config"
	"github.com/dfcarvalho/miolo/pkg/database"
	"github.com/dfcarvalho/miolo/pkg/kafka"
	"github.com/dfcarvalho/miolo/pkg/routes/health"
	"github.com/dfcarvalho/miolo/pkg/server"
)

// Database connects the Postgres pool and applies pending migrations.
type Database struct {
	cfg    *config.Config
	logger ectologger.Logger
	db     database.DB
}

// NewDatabase creates the database startup dependency
func NewDatabase(cfg *config.Config, logger ectologger.Logger) *Database {
	return &Database{
		cfg:    cfg,
		logger: logger,
	}
}

func (d *Database) GetName() string {
	return "database"
}

func (d *Database) DependsOn() []string {
	return nil
}

func (d *Database) Start(ctx context.Context) error {
	db, err := database.Connect(ctx, database.ConnectionConfig{
		Host:            d.cfg.DatabaseHost,
		Port:            d.cfg.DatabasePort,
		UserName:        d.cfg.DatabaseUserName,
		Password:        d.cfg.DatabasePassword,
		Name:            d.cfg.DatabaseName,
		SSLMode:         d.cfg.DatabaseSSLMode,
		MaxOpenConns:    d.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    d.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: d.cfg.DatabaseConnMaxLifetime,
	}, d.logger)
	if err != nil {
		return err
	}
	d.db = db

	driver, err := migratepg.WithInstance(db.Unsafe().DB, &migratepg.Config{})
	if err != nil {
		return err
	}

	migrations := database.NewMigrationService(d.logger, &database.MigrationConfig{
		MigrationFolderPath: d.cfg.DatabaseMigrationFolderPath,
		Version:             uint(d.cfg.DatabaseMigrationVersion),
		Force:               d.cfg.DatabaseMigrationForce,
		AutoRollback:        d.cfg.DatabaseMigrationAutoRollback,
	})
	return migrations.Migrate(d.cfg.DatabaseName, driver)
}

func (d *Database) Stop(_ context.Context) error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// DB returns the connected pool; nil before Start succeeds.
func (d *Database) DB() database.DB {
	return d.db
}

// Producer builds the Kafka producer when event emission is enabled.
type Producer struct {
	cfg      *config.Config
	logger   ectologger.Logger
	producer *kafka.Producer
}

// NewProducer creates the Kafka producer startup dependency
func NewProducer(cfg *config.Config, logger ectologger.Logger) *Producer {
	return &Producer{
		cfg:    cfg,
		logger: logger,
	}
}

func (p *Producer) GetName() string {
	return "kafka-producer"
}

func (p *Producer) DependsOn() []string {
	return nil
}

func (p *Producer) Start(_ context.Context) error {
	if !p.cfg.KafkaProducerEnabled {
		p.logger.Info("Kafka producer disabled")
		return nil
	}

	p.producer = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      p.cfg.KafkaBrokers,
		Topic:        p.cfg.KafkaOutputTopic,
		BatchSize:    p.cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(p.cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: p.cfg.KafkaRequiredAcks,
		Compression:  p.cfg.KafkaCompression,
	}, p.logger)
	return nil
}

func (p *Producer) Stop(_ context.Context) error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// Producer returns the built producer; nil when emission is disabled.
func (p *Producer) Producer() *kafka.Producer {
	return p.producer
}

// HTTPServer serves traffic once its prerequisites are up and flips
// readiness with its own lifecycle.
type HTTPServer struct {
	server  *server.Server
	checker *health.Checker
	logger  ectologger.Logger
}

// NewHTTPServer creates the HTTP server startup dependency
func NewHTTPServer(srv *server.Server, checker *health.Checker, logger ectologger.Logger) *HTTPServer {
	return &HTTPServer{
		server:  srv,
		checker: checker,
		logger:  logger,
	}
}

func (h *HTTPServer) GetName() string {
	return "http-server"
}

func (h *HTTPServer) DependsOn() []string {
	return []string{"database", "kafka-producer"}
}

func (h *HTTPServer) Start(_ context.Context) error {
	go func() {
		if err := h.server.Start(); err != nil && err != http.ErrServerClosed {
			h.logger.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}()
	h.checker.SetReady(true)
	return nil
}

func (h *HTTPServer) Stop(ctx context.Context) error {
	h.checker.SetReady(false)
	return h.server.Shutdown(ctx)
}
