package o3sink

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dushyant25398/Persistent-Systems/internal/model"
	"github.com/dushyant25398/Persistent-Systems/internal/storage"
)

type objectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	GetObjectRecords(ctx context.Context, key string) ([]model.RequestRecord, error)
}

// Sink uploads each batch as one object. It also serves the archive back to
// the admin listener.
type Sink struct {
	store  objectStore
	prefix string
	logger zerolog.Logger
	now    func() time.Time
}

func New(store objectStore, prefix string, logger zerolog.Logger) *Sink {
	return &Sink{store: store, prefix: prefix, logger: logger, now: time.Now}
}

func (s *Sink) Name() string { return TypeName }

func (s *Sink) Write(ctx context.Context, batch []model.RequestRecord) error {
	data, err := storage.EncodeBatch(batch)
	if err != nil {
		return err
	}
	key := storage.KeyForBatch(s.prefix, uuid.NewString(), s.now())
	if err := s.store.PutObject(ctx, key, data, "application/gzip"); err != nil {
		return err
	}
	s.logger.Debug().Str("key", key).Int("records", len(batch)).Msg("request records archived")
	return nil
}

func (s *Sink) Close() error { return nil }

func (s *Sink) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if prefix == "" {
		prefix = s.prefix + "/"
	}
	return s.store.ListObjects(ctx, prefix)
}

func (s *Sink) GetObjectRecords(ctx context.Context, key string) ([]model.RequestRecord, error) {
	return s.store.GetObjectRecords(ctx, key)
}
