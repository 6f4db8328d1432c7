package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeParam(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2026-10-01T12:30:00Z", want: time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC)},
		{in: "2026-10-01T14:30:00+02:00", want: time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC)},
		{in: " 2026-10-01 ", want: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
		{in: "", wantErr: true},
		{in: "yesterday", wantErr: true},
		{in: "2026-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimeParam(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "3m 5s", FormatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "2h 10m", FormatDuration(2*time.Hour+10*time.Minute))
	assert.Equal(t, "1d 1h 0m", FormatDuration(25*time.Hour))
}

func TestRespondWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithError(rec, http.StatusTeapot, "short and stout")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"short and stout"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	respondWithJSON(rec, http.StatusOK, func() {})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
