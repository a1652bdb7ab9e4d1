package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_document_records",
		SQL: `CREATE TABLE IF NOT EXISTS document_records (
  position           BIGSERIAL   PRIMARY KEY,
  id                 TEXT        NOT NULL UNIQUE,
  title              TEXT        NOT NULL,
  category           TEXT        NOT NULL,
  description        TEXT        NOT NULL DEFAULT '',
  tags               JSONB       NOT NULL DEFAULT '[]',
  access_level       TEXT        NOT NULL,
  files              JSONB       NOT NULL DEFAULT '[]',
  uploaded_by        TEXT        NOT NULL DEFAULT '',
  uploaded_at        TIMESTAMPTZ NOT NULL,
  status             TEXT        NOT NULL CHECK (status IN ('pending', 'approved')),
  downloads          INTEGER     NOT NULL DEFAULT 0 CHECK (downloads >= 0),
  views              INTEGER     NOT NULL DEFAULT 0 CHECK (views >= 0),
  extracted_metadata JSONB       NOT NULL DEFAULT '{}',
  source             TEXT        NOT NULL DEFAULT '',
  connector_data     JSONB
);`,
	},
	{
		Name: "create_index_document_records_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_records_status ON document_records (status);`,
	},
	{
		Name: "create_index_document_records_category",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_records_category ON document_records (category);`,
	},
	{
		Name: "create_index_document_records_uploaded_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_records_uploaded_at ON document_records (uploaded_at);`,
	},
}

// EnsureMigrated checks if the 'document_records' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.document_records') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
