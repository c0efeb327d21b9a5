// Package currency validates ISO 4217 codes and converts donation amounts
// between currencies using a public exchange-rate API.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	xcurrency "golang.org/x/text/currency"

	"kofiapi/internal/domain"
)

const (
	primaryEndpoint = "https://open.er-api.com/v6/latest/%s"
	backupEndpoint  = "https://api.exchangerate-api.com/v4/latest/%s"
)

// Normalize validates code against ISO 4217 and returns its canonical
// uppercase form.
func Normalize(code string) (string, error) {
	unit, err := xcurrency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("%w: unknown currency %q", domain.ErrValidation, code)
	}
	return unit.String(), nil
}

// Converter fetches exchange rates over HTTP, falling back to a secondary
// endpoint when the primary is unavailable.
type Converter struct {
	client     *http.Client
	primaryURL string
	backupURL  string
}

// NewConverter creates a converter with the default endpoints.
func NewConverter() *Converter {
	return &Converter{
		client:     &http.Client{Timeout: 10 * time.Second},
		primaryURL: primaryEndpoint,
		backupURL:  backupEndpoint,
	}
}

// NewConverterWithEndpoints is used by tests to point at local servers. The
// URL templates must contain one %s for the base currency code.
func NewConverterWithEndpoints(client *http.Client, primaryURL, backupURL string) *Converter {
	return &Converter{client: client, primaryURL: primaryURL, backupURL: backupURL}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Convert turns amount in `from` currency into the `to` currency at the
// current exchange rate.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	if from == to {
		return amount, nil
	}
	rates, err := c.fetchRates(ctx, from)
	if err != nil {
		return 0, err
	}
	rate, ok := rates[to]
	if !ok {
		return 0, fmt.Errorf("%w: no exchange rate from %s to %s", domain.ErrValidation, from, to)
	}
	return amount * rate, nil
}

func (c *Converter) fetchRates(ctx context.Context, base string) (map[string]float64, error) {
	for _, tmpl := range []string{c.primaryURL, c.backupURL} {
		if tmpl == "" {
			continue
		}
		rates, err := c.fetchFrom(ctx, fmt.Sprintf(tmpl, base))
		if err == nil {
			return rates, nil
		}
	}
	return nil, fmt.Errorf("failed to retrieve exchange rates for %s", base)
}

func (c *Converter) fetchFrom(ctx context.Context, url string) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate endpoint returned %d", resp.StatusCode)
	}
	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("exchange rate endpoint returned no rates")
	}
	return body.Rates, nil
}
