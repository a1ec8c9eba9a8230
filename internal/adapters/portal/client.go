package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

const (
	DefaultActivitiesURL = "https://public-api.apexclearing.com/activities-provider/api/v1/activities/"

	maxActivitiesResponseBytes = 32 << 20
	defaultRequestTimeout      = 30 * time.Second
)

var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

type Config struct {
	ActivitiesURL string
	// RequestsPerSecond paces category requests. Zero disables pacing.
	RequestsPerSecond float64
	RequestTimeout    time.Duration
}

// Client fetches activity categories from the portal REST endpoint using the
// cookies of a live browser session.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration

	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ ports.ActivityFetcher = (*Client)(nil)

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.ActivitiesURL == "" {
		cfg.ActivitiesURL = DefaultActivitiesURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		BaseURL: cfg.ActivitiesURL,
		HTTPClient: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		RequestTimeout: cfg.RequestTimeout,
		limiter:        limiter,
		logger:         logger.Named("portal"),
	}
}

// Fetch issues one GET per category, in order, and returns the raw payloads
// in the same order. The first failing category aborts the fetch.
func (c *Client) Fetch(ctx context.Context, session *ports.Session, account string, categories []domain.Category, window domain.DateWindow) ([]domain.CategoryPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if session == nil || session.Browser == nil {
		return nil, errors.New("fetch activities: session is required")
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, errors.New("fetch activities: account is required")
	}

	cookies, err := session.Browser.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session cookies: %w", errors.Join(domain.ErrSessionInvalid, err))
	}
	jar, err := sessionJar(cookies)
	if err != nil {
		return nil, err
	}

	payloads := make([]domain.CategoryPayload, 0, len(categories))
	for _, category := range categories {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		records, err := c.fetchCategory(ctx, jar, account, category, window)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("fetched category",
			zap.String("category", string(category)),
			zap.Stringer("window", window),
			zap.Int("records", len(records)),
		)
		payloads = append(payloads, domain.CategoryPayload{Category: category, Records: records})
	}

	return payloads, nil
}

func (c *Client) fetchCategory(ctx context.Context, jar http.CookieJar, account string, category domain.Category, window domain.DateWindow) ([]domain.RawRecord, error) {
	fail := func(status int, sentinel error, detail string) error {
		return &domain.FetchError{
			Category: category,
			Window:   window,
			Status:   status,
			Err:      fmt.Errorf("%s: %w", detail, sentinel),
		}
	}

	endpoint, err := c.activitiesURL(account, category, window)
	if err != nil {
		return nil, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build activities request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for _, cookie := range jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fail(0, domain.ErrTransientFetch, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fail(resp.StatusCode, domain.ErrSessionInvalid, "not authenticated")
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		location := resp.Header.Get("Location")
		if redirectsToLogin(location) {
			return nil, fail(resp.StatusCode, domain.ErrSessionInvalid, "redirected to login")
		}
		return nil, fail(resp.StatusCode, domain.ErrTransientFetch, "unexpected redirect to "+location)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fail(resp.StatusCode, domain.ErrTransientFetch, "unexpected status")
	}

	if isHTML(resp.Header.Get("Content-Type")) {
		return nil, fail(resp.StatusCode, domain.ErrSessionInvalid, "received login page instead of json")
	}

	var records []domain.RawRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxActivitiesResponseBytes)).Decode(&records); err != nil {
		return nil, fail(resp.StatusCode, domain.ErrTransientFetch, "decode activities: "+err.Error())
	}

	return records, nil
}

func (c *Client) activitiesURL(account string, category domain.Category, window domain.DateWindow) (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse activities url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", errors.New("activities url must use http or https")
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	endpoint := base.JoinPath(account)
	query := url.Values{}
	query.Set("activityType", string(category))
	query.Set("startDate", window.Start.Format(domain.DateLayout))
	query.Set("endDate", window.End.Format(domain.DateLayout))
	endpoint.RawQuery = query.Encode()

	return endpoint.String(), nil
}

// sessionJar loads the browser cookies into a jar so each request only
// carries the cookies whose domain, path and secure flag match its URL.
func sessionJar(cookies []domain.Cookie) (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	for _, cookie := range cookies {
		host := strings.TrimPrefix(strings.TrimSpace(cookie.Domain), ".")
		if host == "" {
			continue
		}
		origin := &url.URL{Scheme: "http", Host: host, Path: "/"}
		if cookie.Secure {
			origin.Scheme = "https"
		}

		hc := cookie.HTTPCookie()
		// DevTools reports host-only cookies without a leading dot.
		if !strings.HasPrefix(cookie.Domain, ".") {
			hc.Domain = ""
		}
		if hc.Path == "" {
			hc.Path = "/"
		}
		jar.SetCookies(origin, []*http.Cookie{hc})
	}

	return jar, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func redirectsToLogin(location string) bool {
	location = strings.ToLower(location)
	return strings.Contains(location, "login") || strings.Contains(location, "/session")
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html"
}
