package apitesting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/siialab/signalscope/api/config"
	pgmigrate "github.com/siialab/signalscope/pkg/postgres"
)

// PostgresDBConfig holds the Postgres test container configuration.
type PostgresDBConfig struct {
	Database       string
	Username       string
	Password       string
	ContainerImage string
}

// PostgresDB represents a Postgres test container.
type PostgresDB struct {
	log       *slog.Logger
	cfg       *PostgresDBConfig
	host      string
	port      string
	container *tcpg.PostgresContainer
}

// Close terminates the Postgres container.
func (db *PostgresDB) Close() {
	terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.container.Terminate(terminateCtx); err != nil {
		db.log.Error("failed to terminate Postgres container", "error", err)
	}
}

func (db *PostgresDB) dsn(database string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		db.cfg.Username, db.cfg.Password, db.host, db.port, database)
}

func (cfg *PostgresDBConfig) Validate() error {
	if cfg.Database == "" {
		cfg.Database = "test"
	}
	if cfg.Username == "" {
		cfg.Username = "postgres"
	}
	if cfg.Password == "" {
		cfg.Password = "password"
	}
	if cfg.ContainerImage == "" {
		cfg.ContainerImage = "postgres:16-alpine"
	}
	return nil
}

// NewPostgresDB creates a new Postgres testcontainer.
func NewPostgresDB(ctx context.Context, log *slog.Logger, cfg *PostgresDBConfig) (*PostgresDB, error) {
	if cfg == nil {
		cfg = &PostgresDBConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate Postgres DB config: %w", err)
	}

	// Retry container start up to 3 times for retryable errors
	var container *tcpg.PostgresContainer
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		var err error
		container, err = tcpg.Run(ctx,
			cfg.ContainerImage,
			tcpg.WithDatabase(cfg.Database),
			tcpg.WithUsername(cfg.Username),
			tcpg.WithPassword(cfg.Password),
			tcpg.BasicWaitStrategies(),
		)
		if err != nil {
			lastErr = err
			if isRetryableContainerStartErr(err) && attempt < 3 {
				time.Sleep(time.Duration(attempt) * 750 * time.Millisecond)
				continue
			}
			return nil, fmt.Errorf("failed to start Postgres container after retries: %w", lastErr)
		}
		break
	}

	if container == nil {
		return nil, fmt.Errorf("failed to start Postgres container after retries: %w", lastErr)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Postgres container host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to get Postgres container mapped port: %w", err)
	}

	return &PostgresDB{
		log:       log,
		cfg:       cfg,
		host:      host,
		port:      mappedPort.Port(),
		container: container,
	}, nil
}

// SetupTestPostgres creates a unique database for the test, applies the
// intersection migrations to it, and points config.PgPool at it for the
// duration of the test.
func SetupTestPostgres(t *testing.T, db *PostgresDB) {
	ctx := t.Context()

	randomSuffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	databaseName := fmt.Sprintf("test_%s", randomSuffix)

	adminPool, err := pgxpool.New(ctx, db.dsn(db.cfg.Database))
	require.NoError(t, err, "failed to create Postgres admin pool")

	_, err = adminPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", databaseName))
	require.NoError(t, err, "failed to create test database")

	dsn := db.dsn(databaseName)
	err = pgmigrate.RunMigrations(ctx, db.log, dsn)
	require.NoError(t, err, "failed to run Postgres migrations")

	testPool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "failed to create Postgres test pool")

	// Save old config and swap
	oldPool := config.PgPool
	config.PgPool = testPool

	t.Cleanup(func() {
		testPool.Close()
		_, _ = adminPool.Exec(context.Background(), fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", databaseName))
		adminPool.Close()
		config.PgPool = oldPool
	})
}
