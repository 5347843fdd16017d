package bangkok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fxcross/internal/domain"
)

// Client wraps the three GET operations of the bank's exchange-rate API.
// Every request carries the static subscription key; a 401 response is the
// sole auth signal and surfaces as domain.ErrBadAuth.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	now     func() time.Time
}

func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		now:     time.Now,
	}
}

type updateEntry struct {
	Day  string `json:"Day"`
	Time string `json:"Time"`
}

func (c *Client) get(ctx context.Context, keyword string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+keyword, nil)
	if err != nil {
		return fmt.Errorf("failed to create request %q: %w", keyword, err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request %q: %w", keyword, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("request %q: %w", keyword, domain.ErrBadAuth)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d for request %q: %s", resp.StatusCode, keyword, resp.Status)
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response %q: %w", keyword, err)
	}
	return nil
}

// GetLastUpdate returns the most recent bank rate-update timestamps.
func (c *Client) GetLastUpdate(ctx context.Context) ([]updateEntry, error) {
	var entries []updateEntry
	if err := c.get(ctx, "GetDateTimeLastUpdate", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetFamilies returns the full currency code/description catalogue.
func (c *Client) GetFamilies(ctx context.Context) ([]domain.Family, error) {
	var families []domain.Family
	if err := c.get(ctx, "Getfxfamily", &families); err != nil {
		return nil, err
	}
	return families, nil
}

// GetRateHistory returns the rate records for one family between the given
// update date and today. Records arrive as string-valued maps keyed by rate
// kind ("TT", "Sight", ...) plus "Ddate"/"DTime".
func (c *Client) GetRateHistory(ctx context.Context, from domain.UpdateDate, family string) ([]map[string]string, error) {
	today := c.now()
	keyword := fmt.Sprintf("GetChartfxrates/%d/%d/%d/%d/%d/%d/%s/en",
		from.Day, from.Month, from.Year,
		today.Day(), int(today.Month()), today.Year(), family)

	var records []map[string]string
	if err := c.get(ctx, keyword, &records); err != nil {
		return nil, err
	}
	return records, nil
}
