package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAuthFlow(t *testing.T) {
	app := setupApp(t)

	t.Run("register, login, profile, refresh", func(t *testing.T) {
		accessToken, refreshToken, _ := app.registerUser(t, "flow@example.com", "password123")
		if accessToken == "" || refreshToken == "" {
			t.Fatal("expected both tokens on register")
		}

		// Login with the same credentials
		rec := app.request("POST", "/api/v1/auth/login",
			`{"email":"flow@example.com","password":"password123"}`, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		loginToken := result["access_token"].(string)

		// Access the profile with the login token
		rec = app.request("GET", "/api/v1/profile", "", loginToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("profile failed: %d %s", rec.Code, rec.Body.String())
		}
		profile := parseJSON(t, rec)
		if profile["email"] != "flow@example.com" {
			t.Errorf("expected profile email flow@example.com, got %v", profile["email"])
		}

		// Rotate the refresh token
		loginRefresh := result["refresh_token"].(string)
		body := fmt.Sprintf(`{"refresh_token":%q}`, loginRefresh)
		rec = app.request("POST", "/api/v1/auth/refresh", body, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("refresh failed: %d %s", rec.Code, rec.Body.String())
		}
		refreshed := parseJSON(t, rec)
		if refreshed["access_token"] == "" || refreshed["refresh_token"] == "" {
			t.Error("expected new token pair from refresh")
		}

		// The old refresh token was rotated out and must no longer work
		rec = app.request("POST", "/api/v1/auth/refresh", body, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for replayed refresh token, got %d", rec.Code)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		app.registerUser(t, "dupe@example.com", "password123")
		rec := app.request("POST", "/api/v1/auth/register",
			`{"email":"dupe@example.com","password":"password123","first_name":"Test","last_name":"User"}`, "")
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409 for duplicate email, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		errObj := result["error"].(map[string]interface{})
		if errObj["code"] != "DUPLICATE_EMAIL" {
			t.Errorf("expected DUPLICATE_EMAIL, got %v", errObj["code"])
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		app.registerUser(t, "locked@example.com", "password123")
		rec := app.request("POST", "/api/v1/auth/login",
			`{"email":"locked@example.com","password":"wrongpass1"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for wrong password, got %d", rec.Code)
		}
	})

	t.Run("protected route without token", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/properties", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 without token, got %d", rec.Code)
		}
	})

	t.Run("refresh token cannot be used as access token", func(t *testing.T) {
		_, refreshToken, _ := app.registerUser(t, "sneaky@example.com", "password123")
		rec := app.request("GET", "/api/v1/profile", "", refreshToken)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for refresh token on protected route, got %d", rec.Code)
		}
	})
}
