// Package download fetches known ontology files into a local data directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrUnknownSource is returned for names missing from the source table.
var ErrUnknownSource = errors.New("unknown ontology source")

// Downloader fetches ontology files by name.
type Downloader struct {
	sources map[string]string
	client  *http.Client
	log     *slog.Logger
}

// New creates a Downloader over the name -> URL table.
func New(sources map[string]string, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		sources: sources,
		client:  &http.Client{Timeout: 10 * time.Minute},
		log:     logger,
	}
}

// Names returns the supported source names, sorted.
func (d *Downloader) Names() []string {
	names := make([]string, 0, len(d.sources))
	for n := range d.sources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Fetch downloads source name into outDir and returns the file path. An
// existing file is kept as is.
func (d *Downloader) Fetch(ctx context.Context, name, outDir string) (string, error) {
	rawURL, ok := d.sources[name]
	if !ok {
		return "", fmt.Errorf("%w %q, supported: %s", ErrUnknownSource, name, strings.Join(d.Names(), ", "))
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data dir: %w", err)
	}
	outFile := filepath.Join(outDir, path.Base(rawURL))
	if _, err := os.Stat(outFile); err == nil {
		d.log.Warn("file already exists, skipping download", slog.String("path", outFile))
		return outFile, nil
	}

	tmp, err := os.CreateTemp(outDir, ".ontopath-download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := d.download(ctx, rawURL, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("download %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), outFile); err != nil {
		return "", fmt.Errorf("failed to move download into place: %w", err)
	}

	d.log.Info("downloaded ontology",
		slog.String("name", name),
		slog.String("url", rawURL),
		slog.String("path", outFile),
		slog.Int64("bytes", n))
	return outFile, nil
}

func (d *Downloader) download(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("bad status: %s", resp.Status)
	}
	return io.Copy(w, resp.Body)
}
