package valuation

import (
	"context"
	"fmt"
	"math"
	"time"

	apperrors "propfolio/internal/errors"
	"propfolio/internal/logger"
)

// Locality quotes backed by many recent, tight data points start at high
// confidence; anything thinner starts at medium.
const (
	localityHighMinPoints  = 5
	localityHighMaxAgeDays = 180
	localityHighMaxSpread  = 20.0
)

// Purchase-price derivation older than this is too far from the market to
// call medium confidence.
const deriveMediumMaxYears = 10.0

// rateResolution is the outcome of one tier of the fallback chain.
type rateResolution struct {
	pricePerArea float64
	confidence   Confidence
	source       Source
}

// Estimator resolves conservative value ranges for properties. It is
// stateless across calls and safe for concurrent use.
type Estimator struct {
	provider LocalityProvider
	params   Params
	now      func() time.Time
}

// NewEstimator creates an Estimator. The provider may be nil, in which case
// the locality tier always reports no data.
func NewEstimator(provider LocalityProvider, params Params) *Estimator {
	return &Estimator{provider: provider, params: params, now: time.Now}
}

// Estimate produces a conservative (min, max) value range for the property.
// Missing city, kind, or area is a hard failure; locality-data failures are
// absorbed by the next tier and only surface when every tier is exhausted.
func (e *Estimator) Estimate(ctx context.Context, in Input) (*Estimate, error) {
	if in.City == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInsufficientData, "cannot estimate: no city")
	}
	if in.Kind == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInsufficientData, "cannot estimate: no property kind")
	}

	trail := []string{}

	area, areaNote := resolveArea(in)
	if area == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInsufficientData, "cannot estimate: no area")
	}
	trail = append(trail, areaNote)

	// Tiers are tried in order; each either resolves a rate or reports no
	// data and hands over to the next.
	resolvers := []func(context.Context, Input, *[]string) *rateResolution{
		e.fromLocality,
		e.fromPurchasePrice,
		e.fromCityTable,
	}

	var res *rateResolution
	for _, resolve := range resolvers {
		if res = resolve(ctx, in, &trail); res != nil {
			break
		}
	}
	if res == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInsufficientData,
			fmt.Sprintf("cannot estimate: no locality data, purchase price, or fallback rate for city %q", in.City))
	}

	base := res.pricePerArea * *area
	trail = append(trail, fmt.Sprintf("base value %.0f = %.2f per unit area x %.1f area", base, res.pricePerArea, *area))

	if in.UnderConstruction {
		base *= e.params.UnderConstructionFactor
		trail = append(trail, fmt.Sprintf("under-construction discount x%.2f", e.params.UnderConstructionFactor))
	}
	if in.Kind == "commercial" {
		base *= e.params.CommercialFactor
		trail = append(trail, fmt.Sprintf("commercial adjustment x%.2f", e.params.CommercialFactor))
	}

	est := &Estimate{
		Min:        math.Round(base * e.params.MinMargin),
		Max:        math.Round(base * e.params.MaxMargin),
		Confidence: res.confidence,
		Source:     res.source,
	}
	trail = append(trail, fmt.Sprintf("conservative margin: min x%.2f, max x%.2f", e.params.MinMargin, e.params.MaxMargin))

	est.Confidence = e.classifyConfidence(est, in, &trail)
	est.Trail = trail
	return est, nil
}

// resolveArea prefers built-up area and falls back to carpet area.
func resolveArea(in Input) (*float64, string) {
	if in.BuiltUpArea != nil && *in.BuiltUpArea > 0 {
		return in.BuiltUpArea, fmt.Sprintf("using built-up area %.1f", *in.BuiltUpArea)
	}
	if in.CarpetArea != nil && *in.CarpetArea > 0 {
		return in.CarpetArea, fmt.Sprintf("no built-up area, using carpet area %.1f", *in.CarpetArea)
	}
	return nil, ""
}

// fromLocality asks the external locality collaborator. Collaborator errors
// are logged and swallowed; the chain continues with the next tier.
func (e *Estimator) fromLocality(ctx context.Context, in Input, trail *[]string) *rateResolution {
	if e.provider == nil {
		*trail = append(*trail, "no locality provider configured")
		return nil
	}

	quote, err := e.provider.FetchPricePerArea(ctx, in.City, in.PostalCode, in.Kind)
	if err != nil {
		logger.Get().Warnw("locality lookup failed, falling back",
			"city", in.City, "kind", in.Kind, "error", err.Error())
		*trail = append(*trail, fmt.Sprintf("locality data unavailable (%v), falling back", err))
		return nil
	}
	if quote == nil {
		*trail = append(*trail, "no locality data for this city/postal code")
		return nil
	}

	conf := ConfidenceMedium
	if quote.DataPoints >= localityHighMinPoints &&
		quote.AgeInDays <= localityHighMaxAgeDays &&
		quote.SpreadPercent <= localityHighMaxSpread {
		conf = ConfidenceHigh
	}
	*trail = append(*trail, fmt.Sprintf("locality rate %.2f from %d data points (age %dd, spread %.1f%%)",
		quote.PricePerArea, quote.DataPoints, quote.AgeInDays, quote.SpreadPercent))
	return &rateResolution{pricePerArea: quote.PricePerArea, confidence: conf, source: SourceLocalityData}
}

// fromPurchasePrice derives a rate from the recorded purchase, compounding a
// conservative yearly appreciation over the elapsed holding time.
func (e *Estimator) fromPurchasePrice(_ context.Context, in Input, trail *[]string) *rateResolution {
	if in.PurchasePrice == nil || *in.PurchasePrice <= 0 {
		*trail = append(*trail, "no purchase price to derive from")
		return nil
	}

	area, _ := resolveArea(in)
	baseRate := *in.PurchasePrice / *area

	appreciation := e.params.ResidentialAppreciation
	if in.Kind == "commercial" {
		appreciation = e.params.CommercialAppreciation
	}

	years := 0.0
	if in.PurchaseDate != nil {
		years = e.now().Sub(*in.PurchaseDate).Hours() / 24 / 365.25
		if years < 0 {
			years = 0
		}
	}
	rate := baseRate * math.Pow(1+appreciation, years)

	conf := ConfidenceLow
	if in.PurchaseDate != nil && years <= deriveMediumMaxYears {
		conf = ConfidenceMedium
	}
	*trail = append(*trail, fmt.Sprintf("derived rate %.2f from purchase price (%.1f yrs at %.0f%%/yr appreciation)",
		rate, years, appreciation*100))
	return &rateResolution{pricePerArea: rate, confidence: conf, source: SourcePurchaseDerive}
}

// fromCityTable is the static last-resort tier. Always low confidence.
func (e *Estimator) fromCityTable(_ context.Context, in Input, trail *[]string) *rateResolution {
	rate, ok := cityFallbackRate(in.City, in.Kind)
	if !ok {
		*trail = append(*trail, fmt.Sprintf("city %q not in fallback table", in.City))
		return nil
	}
	*trail = append(*trail, fmt.Sprintf("static city fallback rate %.0f", rate))
	return &rateResolution{pricePerArea: rate, confidence: ConfidenceLow, source: SourceCityFallback}
}

// classifyConfidence applies the post-hoc downgrades: a wide min-max spread
// costs one tier, and under-construction properties are always low.
func (e *Estimator) classifyConfidence(est *Estimate, in Input, trail *[]string) Confidence {
	conf := est.Confidence

	mid := (est.Min + est.Max) / 2
	if mid > 0 {
		spread := (est.Max - est.Min) / mid * 100
		if spread > e.params.SpreadDowngradePct {
			conf = downgrade(conf)
			*trail = append(*trail, fmt.Sprintf("spread %.1f%% exceeds %.0f%%, confidence downgraded", spread, e.params.SpreadDowngradePct))
		}
	}

	if in.UnderConstruction && conf != ConfidenceLow {
		conf = ConfidenceLow
		*trail = append(*trail, "under construction, confidence forced to low")
	}
	return conf
}
