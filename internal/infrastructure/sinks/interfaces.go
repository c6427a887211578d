package sinks

import (
	"context"

	"github.com/dushyant25398/Persistent-Systems/internal/model"
	"github.com/dushyant25398/Persistent-Systems/internal/storage"
)

// Sink is a write-only destination for batches of request records.
type Sink interface {
	Name() string
	Write(ctx context.Context, batch []model.RequestRecord) error
	Close() error
}

// ArchiveBrowser is implemented by sinks whose archive can be read back
// (e.g. an object store). Exposed through the admin listener.
type ArchiveBrowser interface {
	ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	GetObjectRecords(ctx context.Context, key string) ([]model.RequestRecord, error)
}
