package o3sink

import (
	"context"

	"github.com/dushyant25398/Persistent-Systems/internal/infrastructure/sinks"
	"github.com/dushyant25398/Persistent-Systems/internal/storage"
)

// TypeName is the archive.sinks key for this sink.
const TypeName = "o3"

func init() {
	sinks.GlobalRegistry.Register(&Factory{})
}

// Factory creates object-store sinks. Registers as "o3".
type Factory struct{}

func (f *Factory) Name() string {
	return TypeName
}

func (f *Factory) ConfigSpec() sinks.TypeInfo {
	return sinks.TypeInfo{
		Type:        TypeName,
		Description: "Uploads each record batch as a gzip JSON object to Akave O3 or any S3-compatible store.",
		Fields: []sinks.ConfigField{
			{Name: "bucket", Type: "string", Required: true, Description: "Bucket name; created if missing", Example: "echo-records"},
			{Name: "endpoint", Type: "string", Required: false, Description: "S3-compatible endpoint; empty means AWS", Example: "https://o3-rc2.akave.xyz"},
			{Name: "region", Type: "string", Required: false, Description: "Signing region", Example: "us-east-1"},
			{Name: "access_key", Type: "string", Required: false, Description: "Access key ID"},
			{Name: "secret_key", Type: "string", Required: false, Description: "Secret access key"},
			{Name: "prefix", Type: "string", Required: false, Description: "Key prefix for batches", Example: "logs"},
		},
	}
}

func (f *Factory) Create(ctx context.Context, cfg sinks.Config, deps sinks.Deps) (sinks.Sink, error) {
	client, err := storage.NewO3Client(storage.O3Options{
		Endpoint:  cfg.String("endpoint", ""),
		Bucket:    cfg.String("bucket", ""),
		Region:    cfg.String("region", ""),
		AccessKey: cfg.String("access_key", ""),
		SecretKey: cfg.String("secret_key", ""),
	})
	if err != nil {
		return nil, err
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	logger := deps.Logger.With().Str("sink", TypeName).Str("bucket", client.Bucket()).Logger()
	return New(client, cfg.String("prefix", "logs"), logger), nil
}
