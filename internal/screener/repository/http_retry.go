package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxErrorBodyLen = 256

// HTTPStatusError is returned for a non-2xx response.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// IsStatus reports whether err is an HTTPStatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

func retryable(err error) bool {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// httpFetcher sends rate limited GET requests and retries network errors,
// 429 and 5xx responses with exponential backoff.
type httpFetcher struct {
	source     string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	delayBase  time.Duration
	log        *logger.Logger
}

func newHTTPFetcher(source string, client *http.Client, maxRequestPerMinute, maxRetries int, delayBase time.Duration, log *logger.Logger) *httpFetcher {
	secondsPerRequest := time.Minute / time.Duration(maxRequestPerMinute)
	return &httpFetcher{
		source:     source,
		client:     client,
		limiter:    rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		maxRetries: maxRetries,
		delayBase:  delayBase,
		log:        log,
	}
}

// redactURL hides credentials passed as query parameters.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("api_token") {
		q.Set("api_token", "redacted")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (f *httpFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.delayBase * time.Duration(1<<(attempt-1))
			f.log.WarnContext(ctx, "Retrying request",
				zap.String("source", f.source),
				zap.String("url", redactURL(rawURL)),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := f.do(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (f *httpFetcher) do(ctx context.Context, rawURL string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("source", f.source),
		zap.String("url", redactURL(rawURL)),
	}

	if err := f.limiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		f.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		fields = append(fields, zap.Error(err))
		f.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, err
	}
	req.Header.Set("User-Agent", common.BrowserUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		f.log.ErrorContext(ctx, "Failed to send request", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		f.log.ErrorContext(ctx, "Failed to read response body", fields...)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > maxErrorBodyLen {
			snippet = snippet[:maxErrorBodyLen]
		}
		fields = append(fields, zap.Int("status_code", resp.StatusCode))
		f.log.DebugContext(ctx, "Received non-OK response", fields...)
		return body, &HTTPStatusError{StatusCode: resp.StatusCode, URL: redactURL(rawURL), Body: snippet}
	}

	f.log.DebugContext(ctx, "Request completed", append(fields, zap.Int("bytes", len(body)))...)
	return body, nil
}
