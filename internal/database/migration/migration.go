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

// Schema: a singleton term configuration row, the class catalog, and the
// insert-only submissions table. The submissions timestamp column is named
// submitted_at to stay clear of the TIMESTAMP keyword.
var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_system_config",
		SQL: `CREATE TABLE IF NOT EXISTS system_config (
  id               SMALLINT    PRIMARY KEY DEFAULT 1 CHECK (id = 1),
  current_year     TEXT        NOT NULL,
  current_semester TEXT        NOT NULL
);`,
	},
	{
		Name: "create_table_classes",
		SQL: `CREATE TABLE IF NOT EXISTS classes (
  id           UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  grade_level  TEXT NOT NULL,
  section_name TEXT NOT NULL
);`,
	},
	{
		Name: "create_index_classes_grade_level",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_classes_grade_level ON classes (grade_level);`,
	},
	{
		Name: "create_table_submissions",
		SQL: `CREATE TABLE IF NOT EXISTS submissions (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  student_name  TEXT        NOT NULL,
  project_title TEXT        NOT NULL,
  file_url      TEXT        NOT NULL,
  grade_level   TEXT        NOT NULL,
  section       TEXT        NOT NULL,
  year          TEXT        NOT NULL,
  semester      TEXT        NOT NULL,
  submitted_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_submissions_submitted_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_submissions_submitted_at ON submissions (submitted_at);`,
	},
	{
		Name: "create_index_submissions_grade_section",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_submissions_grade_section ON submissions (grade_level, section);`,
	},
}

// EnsureMigrated checks if the 'submissions' table exists and runs migrations if it doesn't.
// A hosted (Supabase) database usually carries the schema already, so the
// common path is the sentinel skip.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.submissions') IS NOT NULL"
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
