// Package urlvalidate confirms a citation URL resolves before it is linked
// into an article. A HEAD request is a two-line stdlib call with no
// HTML-parsing or retry-policy surface of its own, so this stays on
// net/http rather than reaching for a library.
package urlvalidate

import (
	"context"
	"net/http"
	"time"

	"github.com/yungbote/articlegen-backend/internal/articlepipeline"
)

// Validator satisfies articlepipeline.URLValidator.
type Validator struct {
	client *http.Client
}

var _ articlepipeline.URLValidator = (*Validator)(nil)

func NewValidator() *Validator {
	return &Validator{client: &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}}
}

// Head issues a HEAD request with the given timeout and returns the final
// status code and the URL actually resolved to after redirects.
func (v *Validator) Head(ctx context.Context, url string, timeout time.Duration) (int, string, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, url, nil)
	if err != nil {
		return 0, url, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, url, err
	}
	defer resp.Body.Close()

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return resp.StatusCode, finalURL, nil
}
