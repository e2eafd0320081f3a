// Package download fetches every archive in the descriptor list
// concurrently and enriches each one with its SHA256 and size.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"irpfgen/pkg/assets"
	"irpfgen/pkg/fetch"
	"irpfgen/pkg/index"
	"irpfgen/pkg/logging"

	"github.com/schollz/progressbar/v3"
)

// EmptyArchiveError reports a download that succeeded but carried zero
// bytes. The server never serves empty archives, so this is an
// internal-consistency fault rather than an ordinary fetch failure.
type EmptyArchiveError struct {
	URL string
}

func (e *EmptyArchiveError) Error() string {
	return fmt.Sprintf("zip file is empty (0 bytes): %s", e.URL)
}

// Options tunes the download phase.
type Options struct {
	// Jobs is the worker count; 0 means NumCPU.
	Jobs int
	// UserAgent overrides the identifying header on each request.
	UserAgent string
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// Run downloads all descriptor URLs with a bounded worker pool. Each
// worker writes SHA256 and Size into its own descriptor slot, so no two
// workers ever touch the same record. Fetch failures are logged and
// tallied without stopping the remaining downloads; ok is true only
// when every download succeeded. An empty archive cancels the rest and
// surfaces as a fatal error.
func Run(ctx context.Context, client *http.Client, descs []index.Descriptor, opts Options) (bool, error) {
	logger := logging.GetLogger(ctx)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(descs) && len(descs) > 0 {
		jobs = len(descs)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = assets.UserAgent
	}
	header := http.Header{"User-Agent": []string{userAgent}}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(
			len(descs),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription(fmt.Sprintf("archives(%d jobs)", jobs)),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(opts.Progress)
			}),
		)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan int)
	errCh := make(chan error, 1)
	reportErr := func(err error) {
		if err == nil {
			return
		}
		select {
		case errCh <- err:
		default:
		}
		cancel()
	}

	var failures int64

	processOne := func(i int) error {
		body, err := fetch.Fetch(workerCtx, client, descs[i].URL, header)
		if err != nil {
			logger.Error("failed to download remote zip file", "url", descs[i].URL, "error", err)
			atomic.AddInt64(&failures, 1)
			return nil
		}
		if body.Len() == 0 {
			return &EmptyArchiveError{URL: descs[i].URL}
		}

		sum := sha256.Sum256(body.Bytes())
		descs[i].SHA256 = hex.EncodeToString(sum[:])
		descs[i].Size = int64(body.Len())
		return nil
	}

	var wg sync.WaitGroup
	for j := 0; j < jobs; j++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				if workerCtx.Err() != nil {
					continue
				}
				reportErr(processOne(i))
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}

	for i := range descs {
		tasks <- i
	}
	close(tasks)
	wg.Wait()

	select {
	case err := <-errCh:
		return false, err
	default:
	}

	return atomic.LoadInt64(&failures) == 0, nil
}
