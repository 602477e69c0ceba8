package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"schemalens/domain/dataset"
	"schemalens/internal"
)

// RecordSource reads rows from a Postgres query into analyzer records. It is
// strictly read-only: the analyzer core never persists anything.
type RecordSource struct {
	db  *sqlx.DB
	log *internal.Logger
}

// NewRecordSource connects to Postgres and returns a record source
func NewRecordSource(databaseURL string, log *internal.Logger) (*RecordSource, error) {
	if log == nil {
		log = internal.DefaultLogger
	}
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &RecordSource{db: db, log: log}, nil
}

// Close releases the database connection
func (s *RecordSource) Close() error {
	return s.db.Close()
}

// Query runs a read-only query and maps each row onto a record. limit caps
// how many rows are fetched; 0 means no cap beyond what the query returns.
func (s *RecordSource) Query(ctx context.Context, query string, limit int) ([]dataset.Record, error) {
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	records := make([]dataset.Record, 0)
	for rows.Next() {
		if limit > 0 && len(records) >= limit {
			break
		}
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}
		records = append(records, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	s.log.Info("fetched %d records from query", len(records))
	return records, nil
}

// Table is a convenience wrapper for profiling a whole table
func (s *RecordSource) Table(ctx context.Context, table string, limit int) ([]dataset.Record, error) {
	query := fmt.Sprintf("SELECT * FROM %s", pq.QuoteIdentifier(table))
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}
	return s.Query(ctx, query, limit)
}

// normalizeRow converts driver-specific scalars into the shapes the
// analyzer's value model understands
func normalizeRow(row map[string]interface{}) dataset.Record {
	rec := make(dataset.Record, len(row))
	for k, v := range row {
		switch t := v.(type) {
		case []byte:
			rec[k] = string(t)
		default:
			rec[k] = v
		}
	}
	return rec
}
