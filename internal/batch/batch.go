// Package batch runs a list of media downloads over a bounded worker pool.
// Jobs never share a sink, so one downloader per job keeps the core's
// no-concurrent-invocation rule intact.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ivannaranjo/gmedia/internal/media"
	"github.com/ivannaranjo/gmedia/internal/output"
	"github.com/ivannaranjo/gmedia/internal/sinks"
	"github.com/ivannaranjo/gmedia/internal/utils"
)

type Config struct {
	Workers      int
	ChunkSize    int64
	ClientConfig utils.HTTPClientConfig
}

type sink interface {
	io.Writer
	Close() error
	Abort() error
}

// Run downloads every entry and reports how many failed. Failures of single
// entries don't stop the rest of the batch.
func Run(ctx context.Context, entries []utils.DownloadEntry, cfg Config) error {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	numWorkers := min(cfg.Workers, len(entries))
	log.Debug().Str("op", "batch").Msgf("downloading %d entries with %d workers", len(entries), numWorkers)

	jobCh := make(chan utils.DownloadEntry, len(entries))
	for _, entry := range entries {
		jobCh <- entry
	}
	close(jobCh)

	var mu sync.Mutex
	var failed int
	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobCh {
				if err := downloadEntry(ctx, entry, cfg); err != nil {
					log.Error().Str("op", "batch").Err(err).Msgf("download failed for %s", entry.URL)
					output.PrintError(fmt.Sprintf("%s %s", output.StyleSymbols["fail"], entry.URL))
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				output.PrintSuccess(fmt.Sprintf("%s %s", output.StyleSymbols["pass"], entry.URL))
			}
		}()
	}
	wg.Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(entries))
	}
	return nil
}

func downloadEntry(ctx context.Context, entry utils.DownloadEntry, cfg Config) error {
	jobID := uuid.New().String()[:8]
	logger := log.With().Str("op", "batch").Str("job", jobID).Logger()
	logger.Info().Msgf("starting download for %s", entry.URL)

	out, err := buildSink(ctx, entry)
	if err != nil {
		return err
	}
	client := utils.NewMediaHTTPClient(cfg.ClientConfig)
	downloader, err := media.New(client, media.Options{
		ChunkSize: cfg.ChunkSize,
		ProgressFunc: func(p media.Progress) {
			logger.Debug().Msgf("%s at %d bytes", p.Status, p.BytesDownloaded)
		},
	})
	if err != nil {
		out.Abort()
		return err
	}

	result := downloader.DownloadContext(ctx, entry.URL, out)
	if result.Status != media.StatusCompleted {
		out.Abort()
		return result.Err
	}
	if err := out.Close(); err != nil {
		return err
	}
	logger.Info().Msgf("downloaded %s (%s)", entry.URL, utils.FormatBytes(uint64(result.BytesDownloaded)))
	return nil
}

func buildSink(ctx context.Context, entry utils.DownloadEntry) (sink, error) {
	if entry.Sink == "s3" || strings.HasPrefix(entry.OutputPath, "s3://") {
		bucket, key, err := sinks.ParseS3Path(entry.OutputPath)
		if err != nil {
			return nil, err
		}
		return sinks.NewS3Sink(ctx, bucket, key, "")
	}
	outputPath := entry.OutputPath
	if outputPath == "" {
		parts := strings.Split(strings.SplitN(entry.URL, "?", 2)[0], "/")
		outputPath = parts[len(parts)-1]
		if outputPath == "" {
			outputPath = "download"
		}
	}
	if _, err := os.Stat(outputPath); err == nil {
		outputPath = utils.RenewOutputPath(outputPath)
	}
	return sinks.NewFileSink(outputPath)
}
