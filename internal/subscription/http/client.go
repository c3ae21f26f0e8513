package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/subscription"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 60 * time.Second
	DefaultMaxBytes  = 5 << 20
	DefaultUserAgent = "clash.meta"
	maxRedirects     = 5
)

var (
	ErrBadStatus    = errors.New("unexpected status")
	ErrBodyTooLarge = errors.New("body exceeds size limit")
)

// FetchError describes a failed subscription download.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %v: %d", e.URL, e.Err, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the request ran out of time.
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

type Options struct {
	Timeout       time.Duration
	MaxBytes      int64
	UserAgent     string
	RatePerSecond float64
}

func DefaultOptions() Options {
	return Options{
		Timeout:   DefaultTimeout,
		MaxBytes:  DefaultMaxBytes,
		UserAgent: DefaultUserAgent,
	}
}

type Logger interface {
	Debug(msg string, args ...any)
}

// Fetcher downloads subscription bodies. Concurrent requests for the same
// URL share one download.
type Fetcher struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
	group   singleflight.Group
	logger  Logger
}

func New(logger Logger, opts Options) *Fetcher {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = def.MaxBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		opts:    opts,
		limiter: limiter,
		logger:  logger,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	v, err, shared := f.group.Do(url, func() (any, error) {
		return f.fetch(ctx, url)
	})
	if shared {
		f.logger.Debug("shared subscription download", "url", url)
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("bad request: %w", err)}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "*/*")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", &FetchError{URL: url, Status: resp.StatusCode, Err: ErrBadStatus}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBytes+1))
	if err != nil {
		return "", &FetchError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.opts.MaxBytes {
		return "", &FetchError{URL: url, Status: resp.StatusCode, Err: ErrBodyTooLarge}
	}

	f.logger.Debug("subscription downloaded",
		"url", url,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return string(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))), nil
}

var _ subscription.Fetcher = (*Fetcher)(nil)
