package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/whomstve123/mixing-api/internal/fileutil"
	"github.com/whomstve123/mixing-api/internal/logging"
	"github.com/whomstve123/mixing-api/internal/services"
	"github.com/whomstve123/mixing-api/internal/storage"
)

// HTTPDoer describes the HTTP client used to download stems.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ObjectStore downloads s3://bucket/key stems.
type ObjectStore interface {
	DownloadToFile(ctx context.Context, bucket, key, dstPath string) (int64, error)
}

// StatusError reports a non-success HTTP response for a stem URL.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	status := strings.TrimSpace(e.Status)
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("GET %s returned %s", e.URL, status)
}

// Fetcher retrieves one stem per call into a destination path.
type Fetcher struct {
	client     HTTPDoer
	objects    ObjectStore
	userAgent  string
	timeout    time.Duration
	allowLocal bool
	logger     *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithObjectStore enables s3:// stem sources.
func WithObjectStore(store ObjectStore) Option {
	return func(f *Fetcher) { f.objects = store }
}

// WithUserAgent sets the User-Agent header sent with every download.
func WithUserAgent(agent string) Option {
	return func(f *Fetcher) { f.userAgent = strings.TrimSpace(agent) }
}

// WithTimeout bounds each individual download. Zero means no limit beyond ctx.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) { f.timeout = timeout }
}

// WithLocalSources permits file:// URLs and bare filesystem paths.
func WithLocalSources(allow bool) Option {
	return func(f *Fetcher) { f.allowLocal = allow }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// New constructs a Fetcher using http.DefaultClient unless overridden.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{client: http.DefaultClient}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.NewComponentLogger(f.logger, "fetcher")
	return f
}

// Fetch downloads rawURL into dest, overwriting any existing file. Exactly one
// file is created per successful call; a failed call leaves no partial file.
// There is no retry. All failures wrap services.ErrDownload.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dest string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	var (
		written int64
		err     error
	)
	switch classify(rawURL) {
	case sourceHTTP:
		written, err = f.fetchHTTP(ctx, rawURL, dest)
	case sourceObject:
		written, err = f.fetchObject(ctx, rawURL, dest)
	case sourceLocal:
		written, err = f.fetchLocal(rawURL, dest)
	default:
		err = fmt.Errorf("unsupported url %q", rawURL)
	}
	if err != nil {
		return services.Wrap(services.ErrDownload, stageFromContext(ctx), "download stem", rawURL, err)
	}

	logging.WithContext(ctx, f.logger).Debug("stem downloaded",
		logging.String("url", rawURL),
		logging.String("path", dest),
		logging.Size("size", written),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return 0, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return fileutil.WriteFile(dest, resp.Body)
}

func (f *Fetcher) fetchObject(ctx context.Context, rawURL, dest string) (int64, error) {
	if f.objects == nil {
		return 0, errors.New("object storage sources are not enabled")
	}
	bucket, key, err := storage.ParseObjectURL(rawURL)
	if err != nil {
		return 0, err
	}
	return f.objects.DownloadToFile(ctx, bucket, key, dest)
}

func (f *Fetcher) fetchLocal(rawURL, dest string) (int64, error) {
	if !f.allowLocal {
		return 0, errors.New("local file sources are not allowed")
	}
	src := rawURL
	if strings.HasPrefix(strings.ToLower(src), "file://") {
		parsed, err := url.Parse(src)
		if err != nil {
			return 0, fmt.Errorf("parse file url: %w", err)
		}
		src = parsed.Path
	}
	src = filepath.Clean(src)
	if filepath.Clean(dest) == src {
		return 0, fmt.Errorf("source and destination are the same file: %s", src)
	}
	return fileutil.CopyFile(src, dest)
}

type sourceKind int

const (
	sourceUnknown sourceKind = iota
	sourceHTTP
	sourceObject
	sourceLocal
)

func classify(rawURL string) sourceKind {
	lower := strings.ToLower(strings.TrimSpace(rawURL))
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return sourceHTTP
	case storage.IsObjectURL(lower):
		return sourceObject
	case strings.HasPrefix(lower, "file://"):
		return sourceLocal
	case !strings.Contains(lower, "://") && lower != "":
		return sourceLocal
	default:
		return sourceUnknown
	}
}

func stageFromContext(ctx context.Context) string {
	if stage, ok := services.StageFromContext(ctx); ok {
		return stage
	}
	return "fetching"
}
