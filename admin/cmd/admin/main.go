package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	flag "github.com/spf13/pflag"

	"github.com/siialab/signalscope/pkg/clickhouse"
	"github.com/siialab/signalscope/pkg/postgres"
	"github.com/siialab/signalscope/utils/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")

	// ClickHouse configuration
	clickhouseAddrFlag := flag.String("clickhouse-addr", "", "ClickHouse address (host:port) (or set CLICKHOUSE_ADDR_TCP env var)")
	clickhouseDatabaseFlag := flag.String("clickhouse-database", "default", "ClickHouse database name (or set CLICKHOUSE_DATABASE env var)")
	clickhouseUsernameFlag := flag.String("clickhouse-username", "default", "ClickHouse username (or set CLICKHOUSE_USERNAME env var)")
	clickhousePasswordFlag := flag.String("clickhouse-password", "", "ClickHouse password (or set CLICKHOUSE_PASSWORD env var)")
	clickhouseSecureFlag := flag.Bool("clickhouse-secure", false, "Enable TLS for ClickHouse Cloud (or set CLICKHOUSE_SECURE=true env var)")

	// Postgres configuration
	postgresDSNFlag := flag.String("postgres-dsn", "", "Postgres DSN (or set POSTGRES_DSN env var)")

	// Commands
	clickhouseMigrateFlag := flag.Bool("clickhouse-migrate", false, "Run ClickHouse partition migrations using goose")
	clickhouseMigrateStatusFlag := flag.Bool("clickhouse-migrate-status", false, "Show ClickHouse partition migration status")
	postgresMigrateFlag := flag.Bool("postgres-migrate", false, "Run Postgres intersection registry migrations using goose")
	postgresMigrateStatusFlag := flag.Bool("postgres-migrate-status", false, "Show Postgres migration status")
	seedIntersectionsFlag := flag.String("seed-intersections", "", "Load the intersection registry from a CSV file (signal_id,siia_id,intersection_name,latitude,longitude)")

	flag.Parse()

	log := logger.New(*verboseFlag)

	// Override ClickHouse flags with environment variables if set
	if envClickhouseAddr := os.Getenv("CLICKHOUSE_ADDR_TCP"); envClickhouseAddr != "" {
		*clickhouseAddrFlag = envClickhouseAddr
	}
	if envClickhouseDatabase := os.Getenv("CLICKHOUSE_DATABASE"); envClickhouseDatabase != "" {
		*clickhouseDatabaseFlag = envClickhouseDatabase
	}
	if envClickhouseUsername := os.Getenv("CLICKHOUSE_USERNAME"); envClickhouseUsername != "" {
		*clickhouseUsernameFlag = envClickhouseUsername
	}
	if envClickhousePassword := os.Getenv("CLICKHOUSE_PASSWORD"); envClickhousePassword != "" {
		*clickhousePasswordFlag = envClickhousePassword
	}
	if os.Getenv("CLICKHOUSE_SECURE") == "true" {
		*clickhouseSecureFlag = true
	}

	// Override Postgres flags with environment variables if set
	if envPostgresDSN := os.Getenv("POSTGRES_DSN"); envPostgresDSN != "" {
		*postgresDSNFlag = envPostgresDSN
	}

	// Execute commands
	if *clickhouseMigrateFlag {
		if *clickhouseAddrFlag == "" {
			return fmt.Errorf("--clickhouse-addr is required for --clickhouse-migrate")
		}
		return clickhouse.RunMigrations(context.Background(), log, clickhouse.MigrationConfig{
			Addr:     *clickhouseAddrFlag,
			Database: *clickhouseDatabaseFlag,
			Username: *clickhouseUsernameFlag,
			Password: *clickhousePasswordFlag,
			Secure:   *clickhouseSecureFlag,
		})
	}

	if *clickhouseMigrateStatusFlag {
		if *clickhouseAddrFlag == "" {
			return fmt.Errorf("--clickhouse-addr is required for --clickhouse-migrate-status")
		}
		return clickhouse.MigrationStatus(context.Background(), log, clickhouse.MigrationConfig{
			Addr:     *clickhouseAddrFlag,
			Database: *clickhouseDatabaseFlag,
			Username: *clickhouseUsernameFlag,
			Password: *clickhousePasswordFlag,
			Secure:   *clickhouseSecureFlag,
		})
	}

	if *postgresMigrateFlag {
		if *postgresDSNFlag == "" {
			return fmt.Errorf("--postgres-dsn is required for --postgres-migrate")
		}
		return postgres.RunMigrations(context.Background(), log, *postgresDSNFlag)
	}

	if *postgresMigrateStatusFlag {
		if *postgresDSNFlag == "" {
			return fmt.Errorf("--postgres-dsn is required for --postgres-migrate-status")
		}
		return postgres.MigrationStatus(context.Background(), log, *postgresDSNFlag)
	}

	if *seedIntersectionsFlag != "" {
		if *postgresDSNFlag == "" {
			return fmt.Errorf("--postgres-dsn is required for --seed-intersections")
		}
		return seedIntersections(context.Background(), *postgresDSNFlag, *seedIntersectionsFlag)
	}

	return nil
}

// seedIntersections bulk-loads the intersection registry from a CSV file. A
// header row is detected by a non-numeric siia_id column and skipped. Empty
// cells load as NULL.
func seedIntersections(ctx context.Context, dsn, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 5

	var rows [][]any
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		if first {
			first = false
			if _, err := strconv.Atoi(record[1]); err != nil && record[1] != "" {
				continue // header row
			}
		}

		row := []any{record[0], nil, nil, nil, nil}
		if record[1] != "" {
			siiaID, err := strconv.Atoi(record[1])
			if err != nil {
				return fmt.Errorf("invalid siia_id %q: %w", record[1], err)
			}
			row[1] = int32(siiaID)
		}
		if record[2] != "" {
			row[2] = record[2]
		}
		for i := 3; i <= 4; i++ {
			if record[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				return fmt.Errorf("invalid coordinate %q: %w", record[i], err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	defer pool.Close()

	copied, err := pool.CopyFrom(ctx,
		pgx.Identifier{"intersections"},
		[]string{"signal_id", "siia_id", "intersection_name", "latitude", "longitude"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy intersections: %w", err)
	}

	fmt.Printf("Loaded %d intersections from %s\n", copied, path)
	return nil
}
