package extractor

import (
	"context"

	"github.com/DmitriyLyalyuev/ytsync/internal/entity"
)

// Mock is a function-field Extractor for tests.
type Mock struct {
	ListFunc     func(ctx context.Context, url string, limit int) ([]entity.FlatEntry, error)
	ProbeFunc    func(ctx context.Context, videoURL string) (*entity.VideoMeta, error)
	DownloadFunc func(ctx context.Context, videoURL string, opts DownloadOptions) (*DownloadResult, error)
}

var _ Extractor = (*Mock)(nil)

func (m *Mock) List(ctx context.Context, url string, limit int) ([]entity.FlatEntry, error) {
	if m.ListFunc == nil {
		return nil, nil
	}

	return m.ListFunc(ctx, url, limit)
}

func (m *Mock) Probe(ctx context.Context, videoURL string) (*entity.VideoMeta, error) {
	if m.ProbeFunc == nil {
		return &entity.VideoMeta{ID: videoURL, URL: videoURL}, nil
	}

	return m.ProbeFunc(ctx, videoURL)
}

func (m *Mock) Download(ctx context.Context, videoURL string, opts DownloadOptions) (*DownloadResult, error) {
	if m.DownloadFunc == nil {
		return &DownloadResult{}, nil
	}

	return m.DownloadFunc(ctx, videoURL, opts)
}
