package valuation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"propfolio/internal/testutil"
	"propfolio/internal/valuation"
)

func fptr(v float64) *float64 { return &v }

// providerFunc adapts a function to the LocalityProvider interface.
type providerFunc func(ctx context.Context, city, postalCode, kind string) (*valuation.Quote, error)

func (f providerFunc) FetchPricePerArea(ctx context.Context, city, postalCode, kind string) (*valuation.Quote, error) {
	return f(ctx, city, postalCode, kind)
}

func noData(_ context.Context, _, _, _ string) (*valuation.Quote, error) {
	return nil, nil
}

func TestEstimateMissingInputs(t *testing.T) {
	e := valuation.NewEstimator(nil, valuation.DefaultParams())

	t.Run("no city", func(t *testing.T) {
		_, err := e.Estimate(context.Background(), valuation.Input{Kind: "residential", CarpetArea: fptr(1000)})
		testutil.AssertAppError(t, err, "INSUFFICIENT_DATA")
	})

	t.Run("no kind", func(t *testing.T) {
		_, err := e.Estimate(context.Background(), valuation.Input{City: "Mumbai", CarpetArea: fptr(1000)})
		testutil.AssertAppError(t, err, "INSUFFICIENT_DATA")
	})

	t.Run("no area", func(t *testing.T) {
		_, err := e.Estimate(context.Background(), valuation.Input{City: "Mumbai", Kind: "residential"})
		testutil.AssertAppError(t, err, "INSUFFICIENT_DATA")
	})
}

func TestEstimateFromLocality(t *testing.T) {
	in := valuation.Input{
		City:        "Bangalore",
		Kind:        "residential",
		BuiltUpArea: fptr(1100),
	}

	t.Run("rich quote gives high confidence", func(t *testing.T) {
		provider := providerFunc(func(_ context.Context, city, _, kind string) (*valuation.Quote, error) {
			if city != "Bangalore" || kind != "residential" {
				t.Errorf("unexpected lookup: city=%q kind=%q", city, kind)
			}
			return &valuation.Quote{PricePerArea: 9000, DataPoints: 8, AgeInDays: 30, SpreadPercent: 5}, nil
		})
		e := valuation.NewEstimator(provider, valuation.DefaultParams())

		est, err := e.Estimate(context.Background(), in)
		testutil.AssertNoError(t, err)

		if est.Source != valuation.SourceLocalityData {
			t.Errorf("expected locality source, got %s", est.Source)
		}
		if est.Confidence != valuation.ConfidenceHigh {
			t.Errorf("expected high confidence, got %s", est.Confidence)
		}
		// 9000 x 1100 = 9,900,000; min x0.90, max x0.95.
		if est.Min != 8910000 {
			t.Errorf("expected min 8910000, got %v", est.Min)
		}
		if est.Max != 9405000 {
			t.Errorf("expected max 9405000, got %v", est.Max)
		}
	})

	t.Run("thin quote gives medium confidence", func(t *testing.T) {
		provider := providerFunc(func(_ context.Context, _, _, _ string) (*valuation.Quote, error) {
			return &valuation.Quote{PricePerArea: 9000, DataPoints: 2, AgeInDays: 30, SpreadPercent: 5}, nil
		})
		e := valuation.NewEstimator(provider, valuation.DefaultParams())

		est, err := e.Estimate(context.Background(), in)
		testutil.AssertNoError(t, err)
		if est.Confidence != valuation.ConfidenceMedium {
			t.Errorf("expected medium confidence, got %s", est.Confidence)
		}
	})

	t.Run("provider error falls through to next tier", func(t *testing.T) {
		provider := providerFunc(func(_ context.Context, _, _, _ string) (*valuation.Quote, error) {
			return nil, errors.New("connection refused")
		})
		e := valuation.NewEstimator(provider, valuation.DefaultParams())

		withPurchase := in
		withPurchase.PurchasePrice = fptr(5500000)
		est, err := e.Estimate(context.Background(), withPurchase)
		testutil.AssertNoError(t, err)
		if est.Source != valuation.SourcePurchaseDerive {
			t.Errorf("expected purchase-derived source after locality failure, got %s", est.Source)
		}
	})
}

func TestEstimateFromPurchasePrice(t *testing.T) {
	t.Run("recent purchase is medium confidence", func(t *testing.T) {
		e := valuation.NewEstimator(providerFunc(noData), valuation.DefaultParams())
		now := time.Now()

		est, err := e.Estimate(context.Background(), valuation.Input{
			City:          "Bangalore",
			Kind:          "residential",
			BuiltUpArea:   fptr(1000),
			PurchasePrice: fptr(5000000),
			PurchaseDate:  &now,
		})
		testutil.AssertNoError(t, err)

		if est.Source != valuation.SourcePurchaseDerive {
			t.Errorf("expected purchase-derived source, got %s", est.Source)
		}
		if est.Confidence != valuation.ConfidenceMedium {
			t.Errorf("expected medium confidence, got %s", est.Confidence)
		}
		// Zero elapsed time: no appreciation, range is 90-95% of price.
		if est.Min != 4500000 {
			t.Errorf("expected min 4500000, got %v", est.Min)
		}
		if est.Max != 4750000 {
			t.Errorf("expected max 4750000, got %v", est.Max)
		}
	})

	t.Run("undated purchase is low confidence", func(t *testing.T) {
		e := valuation.NewEstimator(providerFunc(noData), valuation.DefaultParams())

		est, err := e.Estimate(context.Background(), valuation.Input{
			City:          "Bangalore",
			Kind:          "residential",
			BuiltUpArea:   fptr(1000),
			PurchasePrice: fptr(5000000),
		})
		testutil.AssertNoError(t, err)
		if est.Confidence != valuation.ConfidenceLow {
			t.Errorf("expected low confidence, got %s", est.Confidence)
		}
	})
}

func TestEstimateFromCityTable(t *testing.T) {
	t.Run("under-construction metro residential", func(t *testing.T) {
		e := valuation.NewEstimator(nil, valuation.DefaultParams())

		est, err := e.Estimate(context.Background(), valuation.Input{
			City:              "Bangalore",
			Kind:              "residential",
			UnderConstruction: true,
			CarpetArea:        fptr(1200),
		})
		testutil.AssertNoError(t, err)

		if est.Source != valuation.SourceCityFallback {
			t.Errorf("expected city fallback source, got %s", est.Source)
		}
		if est.Confidence != valuation.ConfidenceLow {
			t.Errorf("expected low confidence, got %s", est.Confidence)
		}
		// 8500 x 1200 x 0.85 discount, then the 0.90/0.95 margins.
		if est.Min != 7803000 {
			t.Errorf("expected min 7803000, got %v", est.Min)
		}
		if est.Max != 8236500 {
			t.Errorf("expected max 8236500, got %v", est.Max)
		}
	})

	t.Run("commercial adjustment applies", func(t *testing.T) {
		e := valuation.NewEstimator(nil, valuation.DefaultParams())

		est, err := e.Estimate(context.Background(), valuation.Input{
			City:       "Mumbai",
			Kind:       "commercial",
			CarpetArea: fptr(500),
		})
		testutil.AssertNoError(t, err)
		// 12000 x 500 x 0.98 = 5,880,000.
		if est.Min != 5292000 {
			t.Errorf("expected min 5292000, got %v", est.Min)
		}
		if est.Max != 5586000 {
			t.Errorf("expected max 5586000, got %v", est.Max)
		}
	})

	t.Run("city lookup ignores case and whitespace", func(t *testing.T) {
		e := valuation.NewEstimator(nil, valuation.DefaultParams())

		est, err := e.Estimate(context.Background(), valuation.Input{
			City:       "  BENGALURU ",
			Kind:       "land",
			CarpetArea: fptr(2400),
		})
		testutil.AssertNoError(t, err)
		if est.Source != valuation.SourceCityFallback {
			t.Errorf("expected city fallback source, got %s", est.Source)
		}
	})

	t.Run("unknown city exhausts the chain", func(t *testing.T) {
		e := valuation.NewEstimator(nil, valuation.DefaultParams())

		_, err := e.Estimate(context.Background(), valuation.Input{
			City:       "Smalltown",
			Kind:       "residential",
			CarpetArea: fptr(1000),
		})
		testutil.AssertAppError(t, err, "INSUFFICIENT_DATA")
	})
}

func TestEstimateRangeInvariants(t *testing.T) {
	e := valuation.NewEstimator(nil, valuation.DefaultParams())

	inputs := []valuation.Input{
		{City: "Mumbai", Kind: "residential", BuiltUpArea: fptr(850)},
		{City: "Pune", Kind: "commercial", CarpetArea: fptr(400), UnderConstruction: true},
		{City: "Jaipur", Kind: "land", CarpetArea: fptr(3000)},
		{City: "Delhi", Kind: "residential", CarpetArea: fptr(1000), PurchasePrice: fptr(9000000)},
	}
	for _, in := range inputs {
		est, err := e.Estimate(context.Background(), in)
		testutil.AssertNoError(t, err)
		if est.Min > est.Max {
			t.Errorf("min %v exceeds max %v for %s %s", est.Min, est.Max, in.City, in.Kind)
		}
		if len(est.Trail) == 0 {
			t.Errorf("expected a non-empty trail for %s %s", in.City, in.Kind)
		}
	}
}

func TestEstimatePrefersBuiltUpArea(t *testing.T) {
	e := valuation.NewEstimator(nil, valuation.DefaultParams())

	est, err := e.Estimate(context.Background(), valuation.Input{
		City:        "Mumbai",
		Kind:        "residential",
		BuiltUpArea: fptr(1000),
		CarpetArea:  fptr(800),
	})
	testutil.AssertNoError(t, err)
	// 8500 x 1000 x 0.90, not 8500 x 800 x 0.90.
	if est.Min != 7650000 {
		t.Errorf("expected min 7650000 from built-up area, got %v", est.Min)
	}
}
