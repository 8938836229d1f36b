package checks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/genomics-tools/datacheck/internal/source"
)

var errNoDatabase = errors.New("Database session is not available")

// TablesNotEmpty returns an error naming the first table without rows
func TablesNotEmpty(ctx context.Context, src *source.Source) error {
	tables, err := src.Tables(ctx)
	if err != nil {
		return err
	}

	for _, table := range tables {
		var n int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", src.QuoteIdent(table))
		if err := src.DB().QueryRowContext(ctx, query).Scan(&n); err != nil {
			return fmt.Errorf("counting rows of %s: %w", table, err)
		}

		if n == 0 {
			return fmt.Errorf("Table %s is empty", table)
		}
	}

	return nil
}

// ForeignKeyLink returns an error naming the first row of sourceTable whose
// sourceKey matches no targetKey in targetTable
func ForeignKeyLink(ctx context.Context, src *source.Source, sourceTable, targetTable, sourceKey, targetKey string) error {
	q := src.QuoteIdent
	query := fmt.Sprintf(
		"SELECT s.%s FROM %s s WHERE NOT EXISTS (SELECT 1 FROM %s t WHERE t.%s = s.%s) ORDER BY s.%s LIMIT 1",
		q(sourceKey), q(sourceTable), q(targetTable), q(targetKey), q(sourceKey), q(sourceKey),
	)

	var key sql.NullString
	err := src.DB().QueryRowContext(ctx, query).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking %s -> %s link: %w", sourceTable, targetTable, err)
	}

	return fmt.Errorf("Entry %s in %s is not linked to any entry in %s", key.String, sourceTable, targetTable)
}

// AttributePresence returns an error naming the first row of table whose
// attribute is NULL or empty
func AttributePresence(ctx context.Context, src *source.Source, table, primaryKey, attribute string) error {
	q := src.QuoteIdent
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s IS NULL OR %s = '' ORDER BY %s LIMIT 1",
		q(primaryKey), q(table), q(attribute), q(attribute), q(primaryKey),
	)

	var key sql.NullString
	err := src.DB().QueryRowContext(ctx, query).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking %s.%s: %w", table, attribute, err)
	}

	return fmt.Errorf("Entry %s in %s does not have a valid %s", key.String, table, attribute)
}
