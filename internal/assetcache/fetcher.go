package assetcache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"
)

//go:generate mockgen -source=fetcher.go -destination=../mocks/assetcache/mock_fetcher.go -package=mock_assetcache

// Fetcher downloads the bytes behind an asset URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Asset, error)
}

type Asset struct {
	Data        []byte
	ContentType string
}

var ErrRelativeURL = errors.New("relative asset URL without a base URL")

// HTTPFetcher fetches assets over HTTP, resolving relative URLs against baseURL.
type HTTPFetcher struct {
	client   *resty.Client
	baseURL  *url.URL
	attempts uint
	delay    time.Duration
}

func NewHTTPFetcher(baseURL string, attempts uint) (*HTTPFetcher, error) {
	fetcher := &HTTPFetcher{
		client:   resty.New(),
		attempts: max(attempts, 1),
		delay:    200 * time.Millisecond,
	}
	if strings.TrimSpace(baseURL) != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("url.Parse(%s) > %w", baseURL, err)
		}
		if !parsed.IsAbs() {
			return nil, fmt.Errorf("base URL must be absolute: %s", baseURL)
		}
		fetcher.baseURL = parsed
	}
	return fetcher, nil
}

func (f *HTTPFetcher) Close() error {
	return f.client.Close()
}

func (f *HTTPFetcher) resolve(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("url.Parse(%s) > %w", rawURL, err)
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}
	if f.baseURL == nil {
		return "", fmt.Errorf("%s: %w", rawURL, ErrRelativeURL)
	}
	return f.baseURL.ResolveReference(parsed).String(), nil
}

// Fetch retries server errors and throttling; other non-2xx responses fail at once.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (Asset, error) {
	target, err := f.resolve(rawURL)
	if err != nil {
		return Asset{}, err
	}

	var asset Asset
	err = retry.Do(
		func() error {
			res, err := f.client.R().
				SetContext(ctx).
				Get(target)
			if err != nil {
				return fmt.Errorf("client.R().Get(%s) > %w", target, err)
			}
			if !res.IsSuccess() {
				statusErr := fmt.Errorf("GET %s: status code %d", target, res.StatusCode())
				if res.StatusCode() < http.StatusInternalServerError && res.StatusCode() != http.StatusTooManyRequests {
					return retry.Unrecoverable(statusErr)
				}
				return statusErr
			}
			asset = Asset{
				Data:        res.Bytes(),
				ContentType: res.Header().Get("Content-Type"),
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return Asset{}, err
	}
	return asset, nil
}
