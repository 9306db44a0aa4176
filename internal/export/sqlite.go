package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"

	_ "modernc.org/sqlite"
)

const sqliteTable = "people"

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createTableSQL(columns []Column) string {
	defs := []string{"discovery_order INTEGER PRIMARY KEY"}
	for _, c := range columns {
		defs = append(defs, quoteIdent(c.Key)+" TEXT NOT NULL")
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", quoteIdent(sqliteTable), strings.Join(defs, ",\n  "))
}

func insertSQL(columns []Column) string {
	names := []string{"discovery_order"}
	placeholders := []string{"?"}
	for _, c := range columns {
		names = append(names, quoteIdent(c.Key))
		placeholders = append(placeholders, "?")
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(sqliteTable),
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
	)
}

// WriteSQLite writes a fresh database at path holding a single `people`
// table, one TEXT column per schema column. An existing file is replaced.
func WriteSQLite(ctx context.Context, path string, people []person.Person, columns []Column) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, createTableSQL(columns))
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL(columns))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range people {
		args := []any{i + 1}
		for _, v := range Row(p, columns) {
			args = append(args, v)
		}
		_, err = stmt.ExecContext(ctx, args...)
		if err != nil {
			return fmt.Errorf("insert %s: %w", p.ProfileURL, err)
		}
	}

	return tx.Commit()
}
