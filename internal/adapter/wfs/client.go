package wfs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/datatales/dwd-warnings-service/internal/config"
	"github.com/datatales/dwd-warnings-service/internal/domain"
	"github.com/datatales/dwd-warnings-service/internal/observability"
)

// acceptGeoJSON asks GeoServer for GeoJSON but tolerates plain JSON.
const acceptGeoJSON = "application/geo+json,application/json,*/*"

// Body excerpts keep upstream diagnostics bounded.
const (
	statusExcerptLimit = 900
	parseExcerptLimit  = 300
)

// Client fetches warning polygons from the DWD GeoServer WFS.
// It implements domain.WarningSource.
type Client struct {
	baseURL    string
	version    string
	userAgent  string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a WFS GetFeature client with the configured endpoint,
// protocol version, timeout, and outbound User-Agent.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   cfg.WFSBaseURL,
		version:   cfg.WFSVersion,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.UpstreamTimeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchWarnings issues a single synchronous GetFeature request. No retries;
// retry policy, if any, belongs to the caller.
func (c *Client) FetchWarnings(ctx context.Context, q domain.WarningQuery) (*domain.FeatureCollection, error) {
	params := url.Values{
		"service": {"WFS"},
		"version": {c.version},
		"request": {"GetFeature"},
		// WFS 2.0.0 names the parameter "typeNames"; GeoServer also accepts
		// the singular form.
		"typeNames":    {q.TypeName},
		"outputFormat": {"application/json"},
		// Clients draw in EPSG:4326, the filter uses CRS:84; both are lon,lat
		// so the bbox passes through unchanged.
		"srsName": {"CRS:84"},
		"bbox":    {q.BBox.String() + ",CRS:84"},
		"count":   {strconv.Itoa(q.MaxFeatures)},
	}

	start := time.Now()
	fc, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	c.metrics.UpstreamRequests.WithLabelValues("success").Inc()
	c.logger.Debug("wfs fetch complete",
		"type_name", q.TypeName,
		"bbox", q.BBox.String(),
		"features", len(fc.Features),
	)
	return fc, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (*domain.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrUpstream, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptGeoJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: DWD request failed: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: DWD WFS HTTP %d: %s", domain.ErrUpstream, resp.StatusCode, excerpt(body, statusExcerptLimit))
	}

	var fc domain.FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		ct := resp.Header.Get("Content-Type")
		return nil, fmt.Errorf("%w: DWD WFS JSON parse error: %v (Content-Type %s, excerpt: %s)", domain.ErrUpstream, err, ct, excerpt(body, parseExcerptLimit))
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: DWD WFS did not return a GeoJSON FeatureCollection", domain.ErrUpstream)
	}
	return &fc, nil
}

func excerpt(body []byte, limit int) string {
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}
