package tinkoff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fxcross/internal/domain"
)

const apiPackage = "tinkoff.public.invest.api.contract.v1"

// MoneyValue is the upstream price encoding: an integer units part plus a
// fractional nano part scaled by 1e-9. The REST gateway serializes units
// (int64) as a JSON string.
type MoneyValue struct {
	Units json.Number `json:"units"`
	Nano  int32       `json:"nano"`
}

// Float64 reconstructs the price as units + nano/1e9.
func (v MoneyValue) Float64() float64 {
	units, _ := v.Units.Int64()
	return float64(units) + float64(v.Nano)/1e9
}

// Instrument is one tradable instrument row from the brokerage catalogue.
type Instrument struct {
	Figi   string `json:"figi"`
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Type   string `json:"-"`
}

// Client calls the brokerage's REST gateway. Each operation is a JSON POST
// to one service method; a 401 response surfaces as domain.ErrBadAuth.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
	}
}

func (c *Client) post(ctx context.Context, service, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/%s.%s/%s", c.baseURL, apiPackage, service, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute %s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("request %s: %w", method, domain.ErrBadAuth)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d for request %s: %s", resp.StatusCode, method, resp.Status)
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return nil
}

// Probe calls GetAccounts purely to verify the token; the response body is
// discarded.
func (c *Client) Probe(ctx context.Context) error {
	var out struct {
		Accounts []json.RawMessage `json:"accounts"`
	}
	return c.post(ctx, "UsersService", "GetAccounts", map[string]any{}, &out)
}

type rawCandle struct {
	Open   MoneyValue  `json:"open"`
	High   MoneyValue  `json:"high"`
	Low    MoneyValue  `json:"low"`
	Close  MoneyValue  `json:"close"`
	Volume json.Number `json:"volume"`
	Time   time.Time   `json:"time"`
}

// Candles returns hourly candlesticks for one instrument in [from, to].
// Zero candles means the FIGI is invalid or has no market data and surfaces
// as domain.ErrNoData, not a transport error.
func (c *Client) Candles(ctx context.Context, figi string, from, to time.Time) ([]domain.Candle, error) {
	body := map[string]any{
		"figi":     figi,
		"from":     from.UTC().Format(time.RFC3339),
		"to":       to.UTC().Format(time.RFC3339),
		"interval": "CANDLE_INTERVAL_HOUR",
	}
	var out struct {
		Candles []rawCandle `json:"candles"`
	}
	if err := c.post(ctx, "MarketDataService", "GetCandles", body, &out); err != nil {
		return nil, err
	}
	if len(out.Candles) == 0 {
		return nil, fmt.Errorf("no candles for figi %q: %w", figi, domain.ErrNoData)
	}

	candles := make([]domain.Candle, 0, len(out.Candles))
	for _, rc := range out.Candles {
		volume, _ := rc.Volume.Int64()
		candles = append(candles, domain.Candle{
			Time:   rc.Time,
			Volume: volume,
			Open:   rc.Open.Float64(),
			Close:  rc.Close.Float64(),
			High:   rc.High.Float64(),
			Low:    rc.Low.Float64(),
		})
	}
	return candles, nil
}

var instrumentKinds = []string{"Shares", "Bonds", "Etfs", "Currencies", "Futures"}

// Instruments collects the ticker/FIGI/name rows across every tradable
// instrument kind, for catalogue lookups.
func (c *Client) Instruments(ctx context.Context) ([]Instrument, error) {
	var all []Instrument
	for _, kind := range instrumentKinds {
		var out struct {
			Instruments []Instrument `json:"instruments"`
		}
		body := map[string]any{"instrumentStatus": "INSTRUMENT_STATUS_ALL"}
		if err := c.post(ctx, "InstrumentsService", kind, body, &out); err != nil {
			return nil, err
		}
		for i := range out.Instruments {
			out.Instruments[i].Type = strings.ToLower(kind)
		}
		all = append(all, out.Instruments...)
	}
	return all, nil
}
