// Command migrate applies versioned BigQuery schema migrations for the
// keuangan dataset. Migration files live under migrations/bigquery as
// NNNN_name.sql and are tracked in a schema_migrations table.
package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dpratama/keuangan-pintar/internal/logger"
)

type migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

type appliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
	Checksum  string
	AppliedBy string
}

var migrationFilePattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

func main() {
	var (
		projectID     = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID")
		datasetID     = flag.String("dataset", envOr("BQ_DATASET", "keuangan"), "BigQuery dataset ID")
		appliedBy     = flag.String("applied-by", "migrate-cli", "recorded in schema_migrations.applied_by")
		migrationsDir = flag.String("migrations", "migrations/bigquery", "path to migration files")
	)
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	if *projectID == "" {
		log.Fatal().Msg("-project flag or GCP_PROJECT is required")
	}

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create BigQuery client")
	}
	defer client.Close()

	log.Info().Str("project", *projectID).Str("dataset", *datasetID).Msg("connected to BigQuery")

	r := &runner{
		client:    client,
		project:   *projectID,
		dataset:   *datasetID,
		appliedBy: *appliedBy,
	}

	if err := r.ensureSchemaMigrationsTable(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema_migrations table")
	}

	migrations, err := readMigrations(*migrationsDir, *projectID, *datasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read migrations")
	}
	log.Info().Int("count", len(migrations)).Msg("found migration files")

	applied, err := r.appliedMigrations(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list applied migrations")
	}

	appliedVersions := make(map[int]bool, len(applied))
	for _, am := range applied {
		appliedVersions[am.Version] = true
	}

	appliedCount := 0
	for _, m := range migrations {
		if appliedVersions[m.Version] {
			log.Info().Str("migration", m.Filename).Msg("already applied, skipping")
			continue
		}

		log.Info().Str("migration", m.Filename).Msg("applying")
		if err := r.execute(ctx, m); err != nil {
			log.Fatal().Err(err).Str("migration", m.Filename).Msg("migration failed")
		}
		if err := r.record(ctx, m); err != nil {
			log.Fatal().Err(err).Str("migration", m.Filename).Msg("failed to record migration")
		}
		appliedCount++
	}

	if appliedCount == 0 {
		log.Info().Msg("no new migrations, dataset is up to date")
	} else {
		log.Info().Int("applied", appliedCount).Msg("migrations applied")
	}
}

type runner struct {
	client    *bigquery.Client
	project   string
	dataset   string
	appliedBy string
}

func (r *runner) ensureSchemaMigrationsTable(ctx context.Context) error {
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS `+"`%s.%s.schema_migrations`"+` (
			version    INT64 NOT NULL,
			name       STRING NOT NULL,
			applied_at TIMESTAMP NOT NULL,
			checksum   STRING,
			applied_by STRING
		)
	`, r.project, r.dataset)
	return r.runDML(ctx, r.client.Query(sql))
}

func (r *runner) appliedMigrations(ctx context.Context) ([]appliedMigration, error) {
	sql := fmt.Sprintf(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM `+"`%s.%s.schema_migrations`"+`
		ORDER BY version ASC
	`, r.project, r.dataset)

	it, err := r.client.Query(sql).Read(ctx)
	if err != nil {
		// First run against a fresh dataset.
		if strings.Contains(err.Error(), "Not found") {
			return nil, nil
		}
		return nil, fmt.Errorf("appliedMigrations: reading schema_migrations: %w", err)
	}

	var applied []appliedMigration
	for {
		var row struct {
			Version   int64
			Name      string
			AppliedAt time.Time
			Checksum  bigquery.NullString
			AppliedBy bigquery.NullString
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("appliedMigrations: iterating: %w", err)
		}
		applied = append(applied, appliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}
	return applied, nil
}

func (r *runner) execute(ctx context.Context, m migration) error {
	return r.runDML(ctx, r.client.Query(m.SQL))
}

func (r *runner) record(ctx context.Context, m migration) error {
	sql := fmt.Sprintf(`
		INSERT INTO `+"`%s.%s.schema_migrations`"+`
		(version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`, r.project, r.dataset)

	q := r.client.Query(sql)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "version", Value: m.Version},
		{Name: "name", Value: m.Name},
		{Name: "checksum", Value: m.Checksum},
		{Name: "applied_by", Value: r.appliedBy},
	}
	return r.runDML(ctx, q)
}

func (r *runner) runDML(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("runDML: running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("runDML: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("runDML: job error: %w", err)
	}
	return nil
}

// parseMigrationFilename extracts the version and name from an NNNN_name.sql
// filename. ok is false for files that do not follow the convention.
func parseMigrationFilename(filename string) (version int, name string, ok bool) {
	matches := migrationFilePattern.FindStringSubmatch(filename)
	if matches == nil {
		return 0, "", false
	}
	version, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, "", false
	}
	return version, matches[2], true
}

// checksumSQL hashes the raw migration content before placeholder
// substitution, so the same logical migration applied to different
// projects shares a checksum.
func checksumSQL(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

func readMigrations(dir, project, dataset string) ([]migration, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// Allow running from within cmd/migrate.
		dir = filepath.Join("../..", dir)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("readMigrations: directory not found: %s", dir)
		}
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("readMigrations: %w", err)
	}

	var migrations []migration
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		version, name, ok := parseMigrationFilename(file.Name())
		if !ok {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("readMigrations: reading %s: %w", file.Name(), err)
		}

		sql := string(content)
		sql = strings.ReplaceAll(sql, "{{PROJECT_ID}}", project)
		sql = strings.ReplaceAll(sql, "{{DATASET_ID}}", dataset)

		migrations = append(migrations, migration{
			Version:  version,
			Name:     name,
			Filename: file.Name(),
			SQL:      sql,
			Checksum: checksumSQL(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
