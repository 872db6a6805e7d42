package valuation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "propfolio/internal/errors"
)

// Quote is a locality-level price-per-area observation from comparable
// listings, with enough metadata to judge how trustworthy it is.
type Quote struct {
	PricePerArea  float64 `json:"price_per_area"`
	DataPoints    int     `json:"data_points"`
	AgeInDays     int     `json:"age_in_days"`
	SpreadPercent float64 `json:"spread_percent"`
}

// LocalityProvider fetches a comparable price-per-area figure for a locality.
// A (nil, nil) return means the provider has no data for the locality, which
// is a normal outcome, not an error; the estimator moves to the next tier.
type LocalityProvider interface {
	FetchPricePerArea(ctx context.Context, city, postalCode, kind string) (*Quote, error)
}

// HTTPLocalityProvider queries a locality-data service over HTTP. The
// upstream contract is a single GET returning a Quote as JSON, 204/404 when
// the locality is unknown.
type HTTPLocalityProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPLocalityProvider creates a locality provider against the given base URL.
func NewHTTPLocalityProvider(baseURL string, timeout time.Duration) *HTTPLocalityProvider {
	return &HTTPLocalityProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchPricePerArea fetches a quote for city+postalCode+kind.
func (p *HTTPLocalityProvider) FetchPricePerArea(ctx context.Context, city, postalCode, kind string) (*Quote, error) {
	q := url.Values{}
	q.Set("city", city)
	q.Set("kind", kind)
	if postalCode != "" {
		q.Set("postal_code", postalCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/price-per-area?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build locality request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLocalityUnavailable, fmt.Errorf("locality request failed: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNoContent, http.StatusNotFound:
		return nil, nil
	default:
		return nil, apperrors.Wrap(apperrors.ErrLocalityUnavailable, fmt.Errorf("locality service returned status %d", resp.StatusCode))
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLocalityUnavailable, fmt.Errorf("decode locality response: %w", err))
	}
	if quote.PricePerArea <= 0 {
		return nil, nil
	}
	return &quote, nil
}
