// Package fetch provides the polite HTTP GET shared by all connectors:
// inter-request delay, client identity rotation, retry with backoff and body decoding.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/leadgen/internal/observability"
)

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Document parses the fetched HTML. An empty body, a non-HTML content type,
// or a parse failure is reported as a *ParseError.
func (r *Result) Document(source string) (*goquery.Document, error) {
	if strings.TrimSpace(r.HTML) == "" {
		return nil, &ParseError{Source: source, Message: "empty response body from " + r.URL}
	}
	if !isMarkup(r.ContentType) {
		return nil, &ParseError{Source: source, Message: fmt.Sprintf("unexpected content type %q from %s", r.ContentType, r.URL)}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(r.HTML))
	if err != nil {
		return nil, &ParseError{Source: source, Message: "failed to parse HTML from " + r.URL, Cause: err}
	}
	return doc, nil
}

// Requester performs GET requests on behalf of one source.
// Connectors embed it by value; it holds no mutable state.
type Requester struct {
	Source string
	Client *http.Client
	Delay  Delay
	Retry  *RetryPolicy
	Random Random
}

// NewRequester creates a Requester with the default client and retry policy.
func NewRequester(source string, baseDelay time.Duration) Requester {
	return Requester{
		Source: source,
		Client: &http.Client{},
		Delay:  NewDelay(baseDelay),
		Retry:  DefaultRetryPolicy(),
		Random: DefaultRandom,
	}
}

// Identity returns an identity to begin a fetch with.
func (r Requester) Identity() RequestConfig {
	return NewRequestConfig(r.random())
}

// Get fetches rawURL with params merged into its query string.
// Before every attempt it waits the polite delay and possibly rotates cfg.
// Transient failures are retried per r.Retry; once exhausted a *SourceUnavailableError is returned.
// The identity used for the final attempt is returned so callers can carry it into the next request.
func (r Requester) Get(ctx context.Context, cfg RequestConfig, rawURL string, params url.Values) (*Result, RequestConfig, error) {
	target, err := buildURL(rawURL, params)
	if err != nil {
		return nil, cfg, err
	}

	retry := r.Retry
	if retry == nil {
		retry = DefaultRetryPolicy()
	}

	log := zap.L().With(zap.String("source", r.Source), zap.String("url", target))

	var result *Result
	attempts, err := retry.ExecuteWithCondition(ctx, func() error {
		if err := r.Delay.Wait(ctx, r.random()); err != nil {
			return err
		}
		cfg = Rotate(cfg, r.random())

		res, err := r.do(ctx, cfg, target)
		if err != nil {
			if IsTransient(err) {
				log.Debug("transient fetch failure", zap.Error(err))
			}
			return err
		}
		result = res
		return nil
	}, IsTransient)

	if err != nil {
		if IsTransient(err) {
			log.Warn("source unavailable", zap.Int("attempts", attempts), zap.Error(err))
			return nil, cfg, &SourceUnavailableError{
				Source:   r.Source,
				URL:      target,
				Attempts: attempts,
				Cause:    err,
			}
		}
		return nil, cfg, err
	}

	return result, cfg, nil
}

// do performs a single request.
func (r Requester) do(ctx context.Context, cfg RequestConfig, target string) (*Result, error) {
	client := r.Client
	if client == nil {
		client = &http.Client{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{URL: target, Message: "failed to create request", Cause: err}
	}
	cfg.apply(req)

	start := time.Now()
	resp, err := client.Do(req)
	observability.SourceRequestDuration.WithLabelValues(r.Source).Observe(time.Since(start).Seconds())
	if err != nil {
		// Cancellation of the caller's context is not a source failure
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		observability.SourceRequests.WithLabelValues(r.Source, "transient").Inc()
		return nil, &TransientNetworkError{URL: target, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		observability.SourceRequests.WithLabelValues(r.Source, "transient").Inc()
		return nil, &TransientNetworkError{URL: target, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode != http.StatusOK {
		observability.SourceRequests.WithLabelValues(r.Source, "error").Inc()
		return nil, &Error{
			URL:        target,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := readBody(resp)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		observability.SourceRequests.WithLabelValues(r.Source, "transient").Inc()
		return nil, &TransientNetworkError{URL: target, Cause: err}
	}

	observability.SourceRequests.WithLabelValues(r.Source, "ok").Inc()
	return &Result{
		URL:         target,
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}

func (r Requester) random() Random {
	if r.Random == nil {
		return DefaultRandom
	}
	return r.Random
}

// isMarkup reports whether contentType can carry HTML. A missing type is accepted.
func isMarkup(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "html") || strings.Contains(ct, "xml") || strings.HasPrefix(ct, "text/plain")
}

// buildURL validates rawURL and merges params into its query.
func buildURL(rawURL string, params url.Values) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		if err == nil {
			err = errors.New("missing scheme or host")
		}
		return "", &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	if len(params) > 0 {
		query := parsedURL.Query()
		for key, values := range params {
			for _, value := range values {
				query.Add(key, value)
			}
		}
		parsedURL.RawQuery = query.Encode()
	}
	return parsedURL.String(), nil
}

// Resolve turns href into an absolute URL relative to base. Invalid input yields "".
func Resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}
