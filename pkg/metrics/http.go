package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/flowgrid/pkg/buildinfo"
	"github.com/matzehuels/flowgrid/pkg/cache"
	"github.com/matzehuels/flowgrid/pkg/errors"
)

// DefaultHTTPTimeout bounds a single fetch attempt.
const DefaultHTTPTimeout = 15 * time.Second

// HTTPResolver measures remote images. Only as much of the body as the
// decoder needs to read the header is downloaded.
type HTTPResolver struct {
	client  *http.Client
	headers map[string]string
}

// NewHTTPResolver returns an HTTPResolver. Pass nil for a client with
// DefaultHTTPTimeout.
func NewHTTPResolver(client *http.Client) *HTTPResolver {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPResolver{
		client:  client,
		headers: map[string]string{"User-Agent": buildinfo.UserAgent()},
	}
}

// Resolve implements Resolver. Network failures and 5xx responses are
// retried with backoff.
func (r *HTTPResolver) Resolve(ctx context.Context, src string) (Dimensions, error) {
	var d Dimensions
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		d, err = r.fetch(ctx, src)
		return err
	})
	if err != nil {
		return Dimensions{}, errors.Wrap(errors.ErrCodeLoad, err, "resolve %s", src)
	}
	return d, nil
}

func (r *HTTPResolver) fetch(ctx context.Context, src string) (Dimensions, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return Dimensions{}, err
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Dimensions{}, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return Dimensions{}, err
	}
	d, _, err := Decode(resp.Body)
	return d, err
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("status %d", code)
	}
}

// SchemeResolver dispatches http(s) sources to Remote and everything else
// to Local.
type SchemeResolver struct {
	Local  Resolver
	Remote Resolver
}

// NewSchemeResolver returns a SchemeResolver.
func NewSchemeResolver(local, remote Resolver) *SchemeResolver {
	return &SchemeResolver{Local: local, Remote: remote}
}

// Resolve implements Resolver.
func (r *SchemeResolver) Resolve(ctx context.Context, src string) (Dimensions, error) {
	if IsRemote(src) {
		if r.Remote == nil {
			return Dimensions{}, errors.New(errors.ErrCodeLoad, "no remote resolver for %s", src)
		}
		return r.Remote.Resolve(ctx, src)
	}
	if r.Local == nil {
		return Dimensions{}, errors.New(errors.ErrCodeLoad, "no local resolver for %s", src)
	}
	return r.Local.Resolve(ctx, src)
}

// IsRemote reports whether src is an http or https URL.
func IsRemote(src string) bool {
	s := strings.ToLower(src)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
