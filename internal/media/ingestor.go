package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"
)

// AssetStorage persists a media object and returns its public location.
type AssetStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// AssetUpdater persists ingestion status updates for video records.
type AssetUpdater interface {
	MarkAssetReady(ctx context.Context, videoID, assetURL string) error
	MarkAssetFailed(ctx context.Context, videoID string) error
}

// AssetIngestorConfig controls the concurrency characteristics of the ingestor.
type AssetIngestorConfig struct {
	QueueSize int
	Workers   int
}

// AssetIngestor uploads accepted video payloads to object storage in the
// background, so publish requests return before the asset is durable. Each
// job ends by marking the video record ready or failed.
type AssetIngestor struct {
	storage AssetStorage
	updater AssetUpdater
	logger  *slog.Logger

	jobs   chan ingestJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

type ingestJob struct {
	videoID  string
	filename string
	payload  []byte
}

var errIngestorClosed = errors.New("asset ingestor closed")

// NewAssetIngestor constructs a background worker pool that persists assets.
func NewAssetIngestor(storage AssetStorage, updater AssetUpdater, cfg AssetIngestorConfig, logger *slog.Logger) *AssetIngestor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	ing := &AssetIngestor{
		storage: storage,
		updater: updater,
		logger:  logger,
		jobs:    make(chan ingestJob, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	ing.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go ing.worker()
	}

	return ing
}

// Enqueue schedules upload of the supplied payload for the video record.
func (i *AssetIngestor) Enqueue(ctx context.Context, videoID, filename string, payload []byte) error {
	if strings.TrimSpace(videoID) == "" {
		return errors.New("media: video id is required")
	}
	if len(payload) == 0 {
		return errors.New("media: empty payload")
	}

	// Catches a closed ingestor before the send below can hit the closed
	// jobs channel.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return errIngestorClosed
	default:
	}

	job := ingestJob{videoID: videoID, filename: filename, payload: payload}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return errIngestorClosed
	case i.jobs <- job:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (i *AssetIngestor) Shutdown(ctx context.Context) error {
	i.once.Do(func() {
		i.cancel()
		close(i.jobs)
	})

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (i *AssetIngestor) worker() {
	defer i.wg.Done()

	for job := range i.jobs {
		i.handleJob(job)
	}
}

func (i *AssetIngestor) handleJob(job ingestJob) {
	if i.storage == nil || i.updater == nil {
		i.logger.Error("asset ingestor missing dependencies", "hasStorage", i.storage != nil, "hasUpdater", i.updater != nil)
		return
	}

	// Uploads outlive the request that queued them.
	uploadCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	url, err := i.storage.Save(uploadCtx, assetKey(job.videoID, job.filename), bytes.NewReader(job.payload))
	if err != nil {
		i.logger.Error("asset upload failed", "videoId", job.videoID, "error", err)
		i.recordFailure(job.videoID)
		return
	}

	if err := i.recordSuccess(job.videoID, url); err != nil {
		i.logger.Error("mark asset ready", "videoId", job.videoID, "error", err)
		i.recordFailure(job.videoID)
		return
	}

	i.logger.Info("asset ingested", "videoId", job.videoID, "location", url, "bytes", len(job.payload))
}

func (i *AssetIngestor) recordFailure(videoID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := i.updater.MarkAssetFailed(ctx, videoID); err != nil {
		i.logger.Error("record asset failure", "videoId", videoID, "error", err)
	}
}

func (i *AssetIngestor) recordSuccess(videoID, assetURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return i.updater.MarkAssetReady(ctx, videoID, assetURL)
}

func assetKey(videoID, filename string) string {
	name := path.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == "/" {
		name = "video"
	}
	return fmt.Sprintf("videos/%s/%s", videoID, name)
}
