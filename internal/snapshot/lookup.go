package snapshot

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	ipPlaceholder = "{ip}"

	maxLookupBody = 64 << 10
)

// NewHTTPClient returns the client used for public IP and geolocation
// lookups. The timeout bounds every request.
func NewHTTPClient(timeout time.Duration, insecureSkipVerify bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func (c *Collector) lookupPublicIP(ctx context.Context) (string, bool) {
	for _, u := range c.publicIPURLs {
		ip, err := c.fetchPublicIP(ctx, u)
		if err != nil {
			c.log.V(1).Info("public ip lookup failed", "url", u, "err", err.Error())
			continue
		}
		return ip, true
	}
	return "", false
}

func (c *Collector) fetchPublicIP(ctx context.Context, u string) (string, error) {
	resp, err := c.get(ctx, u)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLookupBody))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	raw := strings.TrimSpace(string(body))
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var payload struct {
			IP string `json:"ip"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return "", fmt.Errorf("decode ip response: %w", err)
		}
		raw = strings.TrimSpace(payload.IP)
	}

	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return "", fmt.Errorf("invalid ip %q: %w", raw, err)
	}
	return addr.String(), nil
}

func (c *Collector) lookupGeo(ctx context.Context, ip string) (map[string]string, bool) {
	if c.geoURL == "" {
		return nil, false
	}
	u := strings.ReplaceAll(c.geoURL, ipPlaceholder, url.PathEscape(ip))

	resp, err := c.get(ctx, u)
	if err != nil {
		c.log.V(1).Info("geolocation lookup failed", "url", u, "err", err.Error())
		return nil, false
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLookupBody)).Decode(&payload); err != nil {
		c.log.V(1).Info("geolocation response malformed", "url", u, "err", err.Error())
		return nil, false
	}

	geo := flattenGeo(payload)
	if len(geo) == 0 {
		return nil, false
	}
	return geo, true
}

// flattenGeo keeps the scalar attributes of a geolocation response.
func flattenGeo(payload map[string]any) map[string]string {
	geo := make(map[string]string, len(payload))
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			geo[k] = val
		case float64:
			geo[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			geo[k] = strconv.FormatBool(val)
		}
	}
	return geo
}

func (c *Collector) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return resp, nil
}
