package out

import (
	"context"

	"codeclock/internal/modules/report/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

// Host runs exporter binaries over the plugin protocol.
type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	ListFormats(ctx context.Context, manifest domain.Manifest) ([]domain.FormatDescriptor, error)
	Export(ctx context.Context, manifest domain.Manifest, input domain.ExportRequest) (domain.ExportResult, error)
	Summarize(ctx context.Context, manifest domain.Manifest, episodeJSON string) (string, error)
}

// EpisodeSource supplies the episode record handed to exporters.
type EpisodeSource interface {
	ActiveEpisodeJSON(ctx context.Context) (string, error)
}
