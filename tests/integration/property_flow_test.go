package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestPropertyPortfolioFlow(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "owner@example.com", "password123")

	purchaseDate := time.Now().AddDate(-3, 0, 0).Format(time.RFC3339)
	propertyBody := fmt.Sprintf(`{
		"nickname": "Whitefield 2BHK",
		"kind": "residential",
		"status": "ready",
		"purchase_price": 5000000,
		"purchase_date": %q,
		"city": "Bangalore",
		"postal_code": "560066",
		"built_up_area": 1200
	}`, purchaseDate)
	propertyID := app.createProperty(t, token, propertyBody)
	base := fmt.Sprintf("/api/v1/properties/%.0f", propertyID)

	t.Run("attach loan and cash flow", func(t *testing.T) {
		rec := app.request("PUT", base+"/loan", `{
			"lender_name": "First Bank",
			"loan_amount": 3000000,
			"interest_rate": 8.5,
			"emi": 26000,
			"tenure_months": 240,
			"outstanding_balance": 2500000
		}`, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("upsert loan failed: %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("PUT", base+"/cashflow", `{
			"rental_status": "rented",
			"monthly_rent": 25000,
			"monthly_maintenance": 3000,
			"annual_property_tax": 12000
		}`, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("upsert cash flow failed: %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("GET", base, "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("get property failed: %d %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["loan"] == nil {
			t.Error("expected loan attached to property")
		}
		if result["cash_flow"] == nil {
			t.Error("expected cash flow attached to property")
		}
	})

	t.Run("asset analytics before any estimate", func(t *testing.T) {
		rec := app.request("GET", base+"/analytics", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("analytics failed: %d %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		metrics := result["metrics"].(map[string]interface{})
		if metrics["current_value_source"] != "purchase_price" {
			t.Errorf("expected purchase_price source, got %v", metrics["current_value_source"])
		}
		if metrics["current_value"].(float64) != 5000000 {
			t.Errorf("expected current value 5000000, got %v", metrics["current_value"])
		}
		// Rented at 25000/month against 26000 EMI
		if gap := metrics["emi_rent_gap"].(float64); gap != -1000 {
			t.Errorf("expected EMI-rent gap -1000, got %v", gap)
		}
	})

	t.Run("single-property valuation persists an estimate", func(t *testing.T) {
		rec := app.request("POST", base+"/valuation", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("valuation failed: %d %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		estimate := result["estimate"].(map[string]interface{})
		min := estimate["min"].(float64)
		max := estimate["max"].(float64)
		if min <= 0 || max < min {
			t.Fatalf("bad estimate range: min=%v max=%v", min, max)
		}
		// No locality feed is wired in tests, so the estimate derives
		// from the purchase price.
		if estimate["source"] != "purchase_price_derived" {
			t.Errorf("expected purchase_price_derived, got %v", estimate["source"])
		}
		if result["previous_min"] != nil {
			t.Errorf("expected no previous estimate on first run, got %v", result["previous_min"])
		}

		rec = app.request("GET", base, "", token)
		stored := parseJSON(t, rec)
		if stored["estimated_value_min"].(float64) != min {
			t.Errorf("estimate min not persisted: %v", stored["estimated_value_min"])
		}
		if stored["last_estimated_at"] == nil {
			t.Error("expected last_estimated_at to be set")
		}
	})

	t.Run("override wins over estimate and survives re-estimation", func(t *testing.T) {
		update := fmt.Sprintf(`{
			"nickname": "Whitefield 2BHK",
			"kind": "residential",
			"status": "ready",
			"purchase_price": 5000000,
			"purchase_date": %q,
			"city": "Bangalore",
			"postal_code": "560066",
			"built_up_area": 1200,
			"current_value_override": 7000000
		}`, purchaseDate)
		rec := app.request("PUT", base, update, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("GET", base+"/analytics", "", token)
		result := parseJSON(t, rec)
		metrics := result["metrics"].(map[string]interface{})
		if metrics["current_value_source"] != "user_override" {
			t.Errorf("expected user_override source, got %v", metrics["current_value_source"])
		}
		if metrics["current_value"].(float64) != 7000000 {
			t.Errorf("expected current value 7000000, got %v", metrics["current_value"])
		}

		// Re-running the estimator must not disturb the override.
		rec = app.request("POST", base+"/valuation", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("re-valuation failed: %d %s", rec.Code, rec.Body.String())
		}
		rec = app.request("GET", base, "", token)
		stored := parseJSON(t, rec)
		if stored["current_value_override"].(float64) != 7000000 {
			t.Errorf("override was disturbed by valuation: %v", stored["current_value_override"])
		}
	})

	t.Run("portfolio analytics with allocation", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/portfolio/analytics?net_worth=20000000", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("portfolio analytics failed: %d %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["property_count"].(float64) != 1 {
			t.Errorf("expected one property, got %v", result["property_count"])
		}
		if result["total_value"].(float64) != 7000000 {
			t.Errorf("expected total value 7000000 (override), got %v", result["total_value"])
		}
		if alloc := result["allocation_pct"].(float64); alloc != 35 {
			t.Errorf("expected 35%% allocation, got %v", alloc)
		}
		income := result["income_generating"].(map[string]interface{})
		if income["count"].(float64) != 1 {
			t.Errorf("expected one income-generating property, got %v", income["count"])
		}
	})

	t.Run("net_worth must be a non-negative number", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/portfolio/analytics?net_worth=-5", "", token)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for negative net_worth, got %d", rec.Code)
		}
	})

	t.Run("analytics for another user's property is not found", func(t *testing.T) {
		otherToken, _, _ := app.registerUser(t, "stranger@example.com", "password123")
		rec := app.request("GET", base+"/analytics", "", otherToken)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for stranger, got %d", rec.Code)
		}
	})
}

func TestValuationBatchFlow(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "batch@example.com", "password123")

	// Two estimable properties and one with no usable inputs.
	purchaseDate := time.Now().AddDate(-2, 0, 0).Format(time.RFC3339)
	for i := 0; i < 2; i++ {
		app.createProperty(t, token, fmt.Sprintf(`{
			"nickname": "Asset %d",
			"kind": "residential",
			"purchase_price": 4000000,
			"purchase_date": %q,
			"city": "Pune",
			"built_up_area": 1000
		}`, i+1, purchaseDate))
	}
	app.createProperty(t, token, `{
		"nickname": "Bare Plot",
		"kind": "land",
		"city": "Nowhere"
	}`)

	t.Run("owner batch covers every candidate once", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/valuation/run", `{"concurrency": 2, "batch_delay_ms": 1}`, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("owner batch failed: %d %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total"].(float64) != 3 {
			t.Errorf("expected 3 candidates, got %v", result["total"])
		}
		if result["succeeded"].(float64) != 2 {
			t.Errorf("expected 2 successes, got %v", result["succeeded"])
		}
		if result["failed"].(float64) != 1 {
			t.Errorf("expected 1 failure, got %v", result["failed"])
		}
	})

	t.Run("fresh estimates are not re-selected", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/valuation/run", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("owner batch failed: %d %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		// Only the property that failed last time is still missing an estimate.
		if result["total"].(float64) != 1 {
			t.Errorf("expected 1 candidate on second run, got %v", result["total"])
		}
	})

	t.Run("pipeline batch requires the API key", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/pipeline/valuation/run", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 without API key, got %d", rec.Code)
		}

		rec = app.pipelineRequest("POST", "/api/v1/pipeline/valuation/run", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("pipeline batch failed: %d %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if _, ok := result["total"]; !ok {
			t.Error("expected batch summary from pipeline run")
		}
	})
}
