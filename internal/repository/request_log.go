package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dushyant25398/Persistent-Systems/internal/model"
)

var requestLogColumns = []string{"id", "received_at", "method", "path", "query", "remote_addr", "headers", "body"}

// RequestLogRepository appends request records to the request_logs table.
type RequestLogRepository struct {
	pool *pgxpool.Pool
}

// NewRequestLogRepository returns a RequestLogRepository using the given pool.
func NewRequestLogRepository(pool *pgxpool.Pool) *RequestLogRepository {
	return &RequestLogRepository{pool: pool}
}

// InsertBatch copies records into request_logs in one round trip and returns
// the number of rows written.
func (r *RequestLogRepository) InsertBatch(ctx context.Context, records []model.RequestRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"request_logs"},
		requestLogColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return requestLogRow(records[i])
		}),
	)
	if err != nil {
		return n, fmt.Errorf("copy request_logs: %w", err)
	}
	return n, nil
}

func requestLogRow(rec model.RequestRecord) ([]any, error) {
	headers, err := json.Marshal(rec.Headers)
	if err != nil {
		return nil, fmt.Errorf("marshal headers of %s: %w", rec.ID, err)
	}
	// bytea keeps bodies that text would reject (NUL, invalid UTF-8).
	var body []byte
	if rec.Body != nil {
		body = append([]byte{}, *rec.Body...)
	}
	return []any{
		rec.ID,
		rec.Timestamp,
		rec.Method,
		rec.Path,
		rec.Query,
		rec.RemoteAddr,
		headers,
		body,
	}, nil
}
