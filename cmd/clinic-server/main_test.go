package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicapp/clinicapp/internal/config"
	"github.com/clinicapp/clinicapp/internal/platform/middleware"
	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

func TestRateLimitConfig_Overrides(t *testing.T) {
	got := rateLimitConfig(&config.Config{RateLimitRPS: 7.5, RateLimitBurst: 9})
	if got.RequestsPerSecond != 7.5 {
		t.Errorf("requests per second = %v, want 7.5", got.RequestsPerSecond)
	}
	if got.BurstSize != 9 {
		t.Errorf("burst size = %d, want 9", got.BurstSize)
	}
}

func TestRateLimitConfig_DefaultsWhenUnset(t *testing.T) {
	got := rateLimitConfig(&config.Config{})
	want := middleware.DefaultRateLimitConfig()
	if got != want {
		t.Errorf("config = %+v, want defaults %+v", got, want)
	}
}

func runErrorHandler(t *testing.T, err error) (*httptest.ResponseRecorder, *validation.Result) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	errorHandler(zerolog.Nop())(err, c)

	var result validation.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("response is not a result envelope: %v", err)
	}
	return rec, &result
}

func TestErrorHandler_HTTPErrorKeepsCodeAndMessage(t *testing.T) {
	rec, result := runErrorHandler(t, echo.NewHTTPError(http.StatusNotFound, "patient not found"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if result.Success {
		t.Error("error envelope must not report success")
	}
	if result.Message != "patient not found" {
		t.Errorf("message = %q, want %q", result.Message, "patient not found")
	}
}

func TestErrorHandler_UnknownErrorHidesDetail(t *testing.T) {
	rec, result := runErrorHandler(t, errors.New("pq: connection refused"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if result.Message != "internal server error" {
		t.Errorf("internal detail leaked: %q", result.Message)
	}
}
