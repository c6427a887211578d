package pgsink

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dushyant25398/Persistent-Systems/internal/model"
)

type batchInserter interface {
	InsertBatch(ctx context.Context, records []model.RequestRecord) (int64, error)
}

// Sink writes record batches to Postgres.
type Sink struct {
	repo    batchInserter
	closeFn func()
	logger  zerolog.Logger
}

// New wraps repo. closeFn releases the underlying pool and may be nil.
func New(repo batchInserter, closeFn func(), logger zerolog.Logger) *Sink {
	return &Sink{repo: repo, closeFn: closeFn, logger: logger}
}

func (s *Sink) Name() string { return TypeName }

func (s *Sink) Write(ctx context.Context, batch []model.RequestRecord) error {
	n, err := s.repo.InsertBatch(ctx, batch)
	if err != nil {
		return err
	}
	s.logger.Debug().Int64("rows", n).Msg("request records archived")
	return nil
}

func (s *Sink) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
