package schema

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"incubapp/internal/monitoring"
)

const toolVersion = "1.0.0"

// nullMarker distinguishes SQL NULL from an empty string in exported CSVs.
// Same sentinel as the PostgreSQL COPY text format.
const nullMarker = `\N`

// TableMigration reports what happened to one table during migration.
type TableMigration struct {
	Table   string `json:"table"`
	Copied  int64  `json:"copied"`
	Deleted int64  `json:"deleted"`
}

// MigrationReport summarizes a MigrateExistingData run.
type MigrationReport struct {
	Programme string           `json:"programme"`
	Schema    string           `json:"schema"`
	Tables    []TableMigration `json:"tables"`
}

// BackupMetadata is the descriptor written next to the exported files.
type BackupMetadata struct {
	Programme   string    `json:"programme"`
	Schema      string    `json:"schema"`
	Type        string    `json:"type"`
	Operator    string    `json:"operator,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ToolVersion string    `json:"tool_version"`
	NullMarker  string    `json:"null_marker"`
	Files       []string  `json:"files"`
}

// BackupResult describes a completed on-disk export.
type BackupResult struct {
	Dir      string
	Files    []string
	Metadata BackupMetadata
}

// Service performs administrative lifecycle operations on programme schemas.
// Every operation is operator-triggered, logged, and surfaces failures as
// explicit errors; none retries automatically.
type Service struct {
	db     Querier
	binder *Binder
	log    zerolog.Logger
}

func NewService(db Querier, binder *Binder, logger zerolog.Logger) *Service {
	return &Service{db: db, binder: binder, log: logger}
}

// GetSchemaTables lists the fixed table set expected in any programme schema.
func (s *Service) GetSchemaTables() []string {
	return Tables()
}

// CreateProgramSchema creates the schema and its full table set, mirroring
// the canonical public tables. Idempotent: every statement is IF NOT EXISTS.
//
// DDL is not rolled back on partial failure; the error is surfaced and the
// already-created tables remain. Re-running completes the missing pieces.
func (s *Service) CreateProgramSchema(ctx context.Context, code string) error {
	start := time.Now()
	name, err := Resolve(code)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{name}.Sanitize())); err != nil {
		monitoring.SchemaOperations.WithLabelValues("create", "failure").Inc()
		return opError(code, "create_schema", err)
	}

	for _, entity := range Entities() {
		bound, err := s.binder.Bind(entity, name)
		if err != nil {
			return err
		}
		ddl := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (LIKE %s INCLUDING ALL)",
			bound.Qualified(),
			pgx.Identifier{"public", bound.Table}.Sanitize(),
		)
		if _, err := s.db.Exec(ctx, ddl); err != nil {
			s.log.Error().Err(err).Str("programme", code).Str("table", bound.Table).Msg("Table creation failed")
			monitoring.SchemaOperations.WithLabelValues("create", "failure").Inc()
			return opError(code, "create_table_"+bound.Table, err)
		}
	}

	monitoring.SchemaOperations.WithLabelValues("create", "success").Inc()
	monitoring.SchemaOperationDuration.WithLabelValues("create").Observe(time.Since(start).Seconds())
	s.log.Info().Str("programme", code).Str("schema", name).Msg("Programme schema created")
	return nil
}

// MigrateExistingData moves the programme's rows from the public tables into
// its schema. For each table the rows are copied first, the copy is verified
// against the destination count, and only then are the source rows deleted.
// The copy skips rows already present in the destination, so re-running is
// always safe: a failed copy leaves that table's public rows untouched, and a
// failed delete leaves the rows in both schemas until the next run finishes
// the delete.
func (s *Service) MigrateExistingData(ctx context.Context, code string) (*MigrationReport, error) {
	start := time.Now()
	name, err := Resolve(code)
	if err != nil {
		return nil, err
	}

	var programmeID int64
	if err := s.db.QueryRow(ctx, "SELECT id FROM programmes WHERE code = $1", code).Scan(&programmeID); err != nil {
		monitoring.SchemaOperations.WithLabelValues("migrate", "failure").Inc()
		return nil, opError(code, "lookup_programme", err)
	}

	report := &MigrationReport{Programme: code, Schema: name}
	for _, entity := range Entities() {
		bound, err := s.binder.Bind(entity, name)
		if err != nil {
			return report, err
		}
		src := pgx.Identifier{"public", bound.Table}.Sanitize()
		dst := bound.Qualified()

		var pending int64
		if err := s.db.QueryRow(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE programme_id = $1", src), programmeID,
		).Scan(&pending); err != nil {
			monitoring.SchemaOperations.WithLabelValues("migrate", "failure").Inc()
			return report, opError(code, "count_"+bound.Table, err)
		}
		if pending == 0 {
			report.Tables = append(report.Tables, TableMigration{Table: bound.Table})
			continue
		}

		copyStmt := fmt.Sprintf("INSERT INTO %s SELECT * FROM %s WHERE programme_id = $1 ON CONFLICT (id) DO NOTHING", dst, src)
		tag, err := s.db.Exec(ctx, copyStmt, programmeID)
		if err != nil {
			s.log.Error().Err(err).Str("programme", code).Str("table", bound.Table).Msg("Row copy failed, source rows preserved")
			monitoring.SchemaOperations.WithLabelValues("migrate", "failure").Inc()
			return report, opError(code, "copy_"+bound.Table, err)
		}
		copied := tag.RowsAffected()

		// Verification counts the destination, not the insert: rows copied by
		// an earlier run whose delete failed count as migrated too.
		var present int64
		if err := s.db.QueryRow(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE programme_id = $1", dst), programmeID,
		).Scan(&present); err != nil {
			monitoring.SchemaOperations.WithLabelValues("migrate", "failure").Inc()
			return report, opError(code, "verify_"+bound.Table, err)
		}
		if present != pending {
			monitoring.SchemaOperations.WithLabelValues("migrate", "failure").Inc()
			return report, opError(code, "verify_"+bound.Table,
				fmt.Errorf("destination holds %d of %d rows, source rows preserved", present, pending))
		}

		delTag, err := s.db.Exec(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE programme_id = $1", src), programmeID)
		if err != nil {
			monitoring.SchemaOperations.WithLabelValues("migrate", "failure").Inc()
			return report, opError(code, "delete_"+bound.Table, err)
		}
		report.Tables = append(report.Tables, TableMigration{
			Table:   bound.Table,
			Copied:  copied,
			Deleted: delTag.RowsAffected(),
		})
	}

	monitoring.SchemaOperations.WithLabelValues("migrate", "success").Inc()
	monitoring.SchemaOperationDuration.WithLabelValues("migrate").Observe(time.Since(start).Seconds())
	s.log.Info().Str("programme", code).Int("tables", len(report.Tables)).Msg("Programme data migrated")
	return report, nil
}

// BackupSchema exports every table of the programme schema as one CSV file
// per table under dir, plus a metadata descriptor naming the operator who
// triggered it. Used before destructive operations.
func (s *Service) BackupSchema(ctx context.Context, code, dir, operator string) (*BackupResult, error) {
	start := time.Now()
	name, err := Resolve(code)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, opError(code, "backup_mkdir", err)
	}

	result := &BackupResult{Dir: dir}
	for _, entity := range Entities() {
		bound, err := s.binder.Bind(entity, name)
		if err != nil {
			return nil, err
		}
		file := filepath.Join(dir, bound.Table+".csv")
		if err := s.exportTable(ctx, bound, file); err != nil {
			monitoring.SchemaOperations.WithLabelValues("backup", "failure").Inc()
			return nil, opError(code, "export_"+bound.Table, err)
		}
		result.Files = append(result.Files, file)
	}

	result.Metadata = BackupMetadata{
		Programme:   code,
		Schema:      name,
		Type:        "data",
		Operator:    operator,
		CreatedAt:   time.Now().UTC(),
		ToolVersion: toolVersion,
		NullMarker:  nullMarker,
		Files:       result.Files,
	}
	metaFile := filepath.Join(dir, "metadata.json")
	meta, err := json.MarshalIndent(result.Metadata, "", "  ")
	if err != nil {
		return nil, opError(code, "backup_metadata", err)
	}
	if err := os.WriteFile(metaFile, meta, 0o644); err != nil {
		return nil, opError(code, "backup_metadata", err)
	}
	result.Files = append(result.Files, metaFile)

	monitoring.SchemaOperations.WithLabelValues("backup", "success").Inc()
	monitoring.SchemaOperationDuration.WithLabelValues("backup").Observe(time.Since(start).Seconds())
	s.log.Info().Str("programme", code).Str("dir", dir).Msg("Schema backup written")
	return result, nil
}

func (s *Service) exportTable(ctx context.Context, bound *BoundModel, file string) error {
	cols := ""
	for i, c := range bound.Columns {
		if i > 0 {
			cols += ", "
		}
		cols += pgx.Identifier{c}.Sanitize()
	}
	rows, err := s.db.Query(ctx, fmt.Sprintf("SELECT %s FROM %s", cols, bound.Qualified()))
	if err != nil {
		return err
	}
	defer rows.Close()

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(bound.Columns); err != nil {
		return err
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return err
		}
		record := make([]string, len(values))
		for i, v := range values {
			if v == nil {
				record[i] = nullMarker
				continue
			}
			record[i] = fmt.Sprint(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// DropProgramSchema drops the programme schema with CASCADE. With backupFirst
// the schema is exported under backupDir first and the drop is aborted if the
// backup fails; opting out is an explicit caller decision because the drop is
// irreversible.
func (s *Service) DropProgramSchema(ctx context.Context, code string, backupFirst bool, backupDir, operator string) error {
	start := time.Now()
	name, err := Resolve(code)
	if err != nil {
		return err
	}

	if backupFirst {
		if _, err := s.BackupSchema(ctx, code, backupDir, operator); err != nil {
			s.log.Error().Err(err).Str("programme", code).Msg("Backup failed, drop aborted")
			monitoring.SchemaOperations.WithLabelValues("drop", "failure").Inc()
			return opError(code, "backup_before_drop", err)
		}
	}

	if _, err := s.db.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pgx.Identifier{name}.Sanitize())); err != nil {
		monitoring.SchemaOperations.WithLabelValues("drop", "failure").Inc()
		return opError(code, "drop_schema", err)
	}

	monitoring.SchemaOperations.WithLabelValues("drop", "success").Inc()
	monitoring.SchemaOperationDuration.WithLabelValues("drop").Observe(time.Since(start).Seconds())
	s.log.Info().Str("programme", code).Str("schema", name).Bool("backed_up", backupFirst).Msg("Programme schema dropped")
	return nil
}

// GetSchemaStats returns the row count for every table in the programme
// schema. A count for a missing table surfaces as an error, which is how a
// partial creation or migration becomes observable.
func (s *Service) GetSchemaStats(ctx context.Context, code string) (map[string]int64, error) {
	name, err := Resolve(code)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64, len(registry))
	for _, entity := range Entities() {
		bound, err := s.binder.Bind(entity, name)
		if err != nil {
			return nil, err
		}
		var count int64
		if err := s.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", bound.Qualified())).Scan(&count); err != nil {
			return nil, opError(code, "count_"+bound.Table, err)
		}
		stats[bound.Table] = count
	}
	return stats, nil
}

// SchemaExists reports whether the programme's schema has been created.
func (s *Service) SchemaExists(ctx context.Context, code string) (bool, error) {
	name, err := Resolve(code)
	if err != nil {
		return false, err
	}
	var exists bool
	err = s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)", name,
	).Scan(&exists)
	if err != nil {
		return false, opError(code, "schema_exists", err)
	}
	return exists, nil
}
