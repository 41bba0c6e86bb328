package service

import (
	"context"

	"ytgrab/internal/model"
)

type Downloader interface {
	DownloadBatch(ctx context.Context, urls []string) (model.Tally, error)
	DownloadOne(ctx context.Context, url string) error
}
