// Package media downloads a single binary resource from an HTTP endpoint as a
// sequence of ranged GET requests, writing each chunk to a caller-supplied
// sink and reporting per-chunk progress. The loop is strictly sequential:
// each chunk's range depends on the previous chunk's observed length.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ivannaranjo/gmedia/internal/apierror"
	"github.com/ivannaranjo/gmedia/internal/utils"
)

// Options configures a Downloader.
type Options struct {
	// ChunkSize is the number of bytes requested per ranged GET. Zero
	// selects DefaultChunkSize; negative values are rejected.
	ChunkSize int64

	// ProgressFunc, when set, is called synchronously from the chunk loop
	// after each chunk is written to the sink and once at terminal state.
	ProgressFunc func(Progress)
}

// Downloader retrieves media resources chunk by chunk. One instance may be
// reused sequentially; it must not serve two simultaneous downloads sharing
// a sink.
type Downloader struct {
	client     utils.HTTPDoer
	chunkSize  int64
	progressFn func(Progress)
}

func New(client utils.HTTPDoer, opts Options) (*Downloader, error) {
	if opts.ChunkSize < 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", opts.ChunkSize)
	}
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = utils.DefaultChunkSize
	}
	return &Downloader{
		client:     client,
		chunkSize:  chunkSize,
		progressFn: opts.ProgressFunc,
	}, nil
}

// Download runs the chunk loop on the caller's goroutine. The outcome is in
// the returned Result; errors never escape the progress/result contract.
func (d *Downloader) Download(rawURL string, sink io.Writer) Result {
	return d.DownloadContext(context.Background(), rawURL, sink)
}

// DownloadContext is Download with cooperative cancellation. The context is
// checked before each chunk request and honored while a request is in
// flight. A cancellation that has not been observed by the time the final
// chunk succeeded does not downgrade a completed download.
func (d *Downloader) DownloadContext(ctx context.Context, rawURL string, sink io.Writer) Result {
	mediaURL := MediaURL(rawURL)
	var downloaded int64
	for {
		select {
		case <-ctx.Done():
			return d.fail(downloaded, &apierror.CancelledError{Err: ctx.Err()})
		default:
		}
		chunk, final, err := d.fetchChunk(ctx, mediaURL, downloaded)
		if err != nil {
			return d.fail(downloaded, err)
		}
		if _, err := sink.Write(chunk); err != nil {
			return d.fail(downloaded, fmt.Errorf("error writing to sink: %v", err))
		}
		downloaded += int64(len(chunk))
		if final {
			log.Debug().Str("op", "media/downloader").Msgf("download complete at %d bytes", downloaded)
			d.emit(Progress{Status: StatusCompleted, BytesDownloaded: downloaded})
			return Result{Status: StatusCompleted, BytesDownloaded: downloaded}
		}
		d.emit(Progress{Status: StatusInProgress, BytesDownloaded: downloaded})
	}
}

// fetchChunk issues one ranged GET for [offset, offset+chunkSize-1] and
// returns the decompressed body plus whether it was the final chunk. The
// chunk is fully read before anything is reported, so the sink never sees a
// half-applied chunk.
func (d *Downloader) fetchChunk(ctx context.Context, mediaURL string, offset int64) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, false, &apierror.TransportError{Err: err}
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+d.chunkSize-1))
	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, &apierror.CancelledError{Err: ctx.Err()}
		}
		return nil, false, &apierror.TransportError{Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, &apierror.CancelledError{Err: ctx.Err()}
		}
		return nil, false, &apierror.TransportError{Err: err}
	}
	if resp.StatusCode >= 400 {
		return nil, false, apierror.ParseResponse(resp.StatusCode, body)
	}
	log.Debug().Str("op", "media/downloader").Msgf("fetched %d bytes at offset %d", len(body), offset)
	final := int64(len(body)) < d.chunkSize
	if !final {
		if total, ok := responseTotal(resp, offset); ok && offset+int64(len(body)) >= total {
			final = true
		}
	}
	return body, final, nil
}

// fail emits the single terminal Failed event at the pre-chunk byte count
// and mirrors it in the result.
func (d *Downloader) fail(downloaded int64, err error) Result {
	log.Debug().Str("op", "media/downloader").Err(err).Msgf("download failed at %d bytes", downloaded)
	d.emit(Progress{Status: StatusFailed, BytesDownloaded: downloaded, Err: err})
	return Result{Status: StatusFailed, BytesDownloaded: downloaded, Err: err}
}

func (d *Downloader) emit(p Progress) {
	if d.progressFn != nil {
		d.progressFn(p)
	}
}
