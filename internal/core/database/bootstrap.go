package db

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

//go:embed scripts/initdb.sql
var bootstrapFS embed.FS

const schemaVersion = 1

// EnsureBootstrapped creates the schema once and records its version in
// loan_advisor_meta.
func EnsureBootstrapped(ctx context.Context, db *sqlx.DB) error {
	ctxBoot, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	if _, err := db.ExecContext(ctxBoot, `CREATE TABLE IF NOT EXISTS loan_advisor_meta (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("meta table create failed: %w", err)
	}

	var n int
	if err := db.GetContext(ctxBoot, &n, db.Rebind(`SELECT COUNT(*) FROM loan_advisor_meta WHERE version = ?`), schemaVersion); err != nil {
		return fmt.Errorf("meta version check failed: %w", err)
	}
	if n > 0 {
		return nil
	}
	return runBootstrap(ctxBoot, db)
}

func runBootstrap(ctx context.Context, db *sqlx.DB) error {
	sqlBytes, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	if err != nil {
		return fmt.Errorf("read initdb.sql: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, stmt := range splitStatements(string(sqlBytes)) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec bootstrap: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO loan_advisor_meta (version) VALUES (?)`), schemaVersion); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}
	return nil
}

// splitStatements breaks the bootstrap script on semicolons. The script
// holds DDL only, so no statement contains a literal semicolon.
func splitStatements(script string) []string {
	var out []string
	for _, s := range strings.Split(script, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
