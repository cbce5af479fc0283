package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"MoversScanner/internal/config"
	"MoversScanner/internal/domain"
	"MoversScanner/internal/ports"
)

const (
	restRootPath   = "/wp-json/"
	userAgent      = "Mozilla/5.0"
	bodyPreviewMax = 600
)

// Publisher posts structured records to a WordPress REST endpoint with
// Basic authentication. Publish never raises: any failure is logged with
// its diagnostic detail and reported as ok=false, so one rejected record
// cannot abort a batch.
type Publisher struct {
	apiURL   string
	username string
	password string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher wires endpoint and credentials from configuration.
func NewPublisher(cfg config.WordPressConfig, log *slog.Logger) *Publisher {
	return &Publisher{
		apiURL:   cfg.APIURL,
		username: cfg.Username,
		password: cfg.Password,
		client:   &http.Client{Timeout: cfg.Timeout()},
		logger:   log,
	}
}

// Publish serializes the record and POSTs it to the endpoint. Non-2xx
// responses and transport failures are both non-fatal; the response body is
// returned on success.
func (p *Publisher) Publish(ctx context.Context, rec domain.PublishRecord) (string, bool) {
	payload, err := json.Marshal(rec)
	if err != nil {
		p.error("marshal publish record", "stock", rec.StockName, "error", err)
		return "", false
	}

	p.debug("posting record", "url", p.apiURL, "stock", rec.StockName, "tag", rec.Tag, "payload", string(payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		p.error("build publish request", "url", p.apiURL, "error", err)
		return "", false
	}
	p.decorate(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.error("publish transport failure", "url", p.apiURL, "stock", rec.StockName, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		p.error("publish rejected",
			"url", p.apiURL,
			"stock", rec.StockName,
			"status", resp.Status,
			"body", preview(string(body)))
		return "", false
	}

	p.info("published", "stock", rec.StockName, "status", resp.StatusCode)
	return string(body), true
}

// Preflight verifies the WordPress REST root is reachable, then probes the
// exact target endpoint with credentials to surface authentication or
// routing errors before the batch starts. Any failure is fatal for the run.
func (p *Publisher) Preflight(ctx context.Context) error {
	p.info("preflight", "url", p.apiURL, "user", p.username, "pass", mask(p.password, 4))

	rootURL, err := restRoot(p.apiURL)
	if err != nil {
		return fmt.Errorf("preflight: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rootURL, nil)
	if err != nil {
		return fmt.Errorf("preflight: build root request: %w", err)
	}
	p.decorate(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("preflight: rest root %s unreachable: %w", rootURL, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("preflight: rest root %s returned %s", rootURL, resp.Status)
	}
	p.info("rest root reachable", "url", rootURL, "status", resp.StatusCode)

	probe, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL, nil)
	if err != nil {
		return fmt.Errorf("preflight: build endpoint probe: %w", err)
	}
	p.decorate(probe)

	probeResp, err := p.client.Do(probe)
	if err != nil {
		return fmt.Errorf("preflight: endpoint probe %s failed: %w", p.apiURL, err)
	}
	defer probeResp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(probeResp.Body, bodyPreviewMax))
	p.info("endpoint probe", "url", p.apiURL, "status", probeResp.StatusCode, "preview", preview(string(body)))

	return nil
}

func (p *Publisher) decorate(req *http.Request) {
	req.SetBasicAuth(p.username, p.password)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
}

// restRoot rewrites the endpoint URL down to the site's /wp-json/ root.
func restRoot(apiURL string) (string, error) {
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint url %s: %w", apiURL, err)
	}
	parsed.Path = restRootPath
	parsed.RawQuery = ""
	return parsed.String(), nil
}

// mask hides all but the first keep characters of a credential for logs.
func mask(s string, keep int) string {
	if s == "" {
		return ""
	}
	if len(s) <= keep {
		return strings.Repeat("*", len(s))
	}
	return s[:keep] + strings.Repeat("*", len(s)-keep)
}

func preview(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > bodyPreviewMax {
		return body[:bodyPreviewMax]
	}
	return body
}

func (p *Publisher) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Publisher) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Publisher) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
