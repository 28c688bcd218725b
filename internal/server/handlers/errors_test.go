package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.Errorf(models.ErrValidation, "bad side"), http.StatusBadRequest},
		{"invalid quantity", models.ErrInvalidQuantity, http.StatusBadRequest},
		{"not found", models.ErrNotFound, http.StatusNotFound},
		{"finalized", models.ErrFinalized, http.StatusConflict},
		{"already signed", fmt.Errorf("sign: %w", models.ErrAlreadySigned), http.StatusConflict},
		{"insufficient", models.ErrInsufficientStock, http.StatusConflict},
		{"forbidden", models.ErrForbidden, http.StatusForbidden},
		{"too old", models.ErrTooOld, http.StatusUnprocessableEntity},
		{"internal", models.Internal("find", errors.New("socket closed")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Fatalf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, zap.NewNop(), models.Internal("find", errors.New("dial tcp 10.0.0.5:27017")))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("expected generic message, got %q", body["error"])
	}
}

func TestYearMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query   string
		wantErr bool
	}{
		{"year=2026&month=1", false},
		{"year=2026", true},
		{"year=abc&month=1", true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			_, _, err := yearMonth(c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("yearMonth(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, models.ErrValidation) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}
}
