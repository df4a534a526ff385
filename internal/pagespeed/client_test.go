package pagespeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Fetch(t *testing.T) {
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"url":      r.URL.Query().Get("url"),
			"key":      r.URL.Query().Get("key"),
			"strategy": r.URL.Query().Get("strategy"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "https://example.com/",
			"analysisUTCTimestamp": "2024-01-02T03:04:05.000Z",
			"lighthouseResult": {"audits": {
				"speed-index": {"score": 0.91, "displayValue": "1.2 s"},
				"total-blocking-time": {"score": "bogus", "displayValue": 42}
			}}
		}`))
	}))
	defer srv.Close()

	client := NewClient(logrus.New(), WithEndpoint(srv.URL))

	payload, err := client.Fetch(context.Background(), "https://example.com", "secret", StrategyDesktop)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", gotQuery["url"])
	assert.Equal(t, "secret", gotQuery["key"])
	assert.Equal(t, "DESKTOP", gotQuery["strategy"])

	si := payload.Audit(AuditSpeedIndex)
	require.NotNil(t, si.Score.Ptr())
	assert.InDelta(t, 0.91, *si.Score.Ptr(), 1e-9)
	assert.Equal(t, "1.2 s", si.DisplayValue.String())

	tbt := payload.Audit(AuditTotalBlockingTime)
	assert.False(t, tbt.Score.Valid())
	assert.False(t, tbt.DisplayValue.Valid())

	assert.False(t, payload.Audit(AuditInteractive).Score.Valid())
}

func TestClient_FetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{
			name:   "api error",
			status: http.StatusBadRequest,
			body:   `{"error": {"code": 400, "message": "API key not valid"}}`,
		},
		{
			name:   "server error without body",
			status: http.StatusInternalServerError,
			body:   ``,
		},
		{
			name:   "undecodable body",
			status: http.StatusOK,
			body:   `not json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(logrus.New(), WithEndpoint(srv.URL))
			payload, err := client.Fetch(context.Background(), "https://example.com", "", StrategyMobile)
			require.ErrorIs(t, err, ErrFetchFailure)
			assert.Nil(t, payload)
		})
	}
}

func TestPayload_LenientDecoding(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		empty bool
	}{
		{name: "empty object", body: `{}`, empty: true},
		{name: "api error body", body: `{"error": {"message": "nope"}}`, empty: true},
		{name: "id only", body: `{"id": "https://a.example/"}`, empty: false},
		{name: "lighthouse result not an object", body: `{"lighthouseResult": "x"}`, empty: false},
		{name: "audits not an object", body: `{"lighthouseResult": {"audits": []}}`, empty: false},
		{name: "audit not an object", body: `{"lighthouseResult": {"audits": {"speed-index": 3}}}`, empty: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload Payload
			require.NoError(t, json.Unmarshal([]byte(tt.body), &payload))
			assert.Equal(t, tt.empty, payload.IsEmpty())
			assert.False(t, payload.Audit(AuditSpeedIndex).Score.Valid())
		})
	}

	var nilPayload *Payload
	assert.True(t, nilPayload.IsEmpty())
	assert.False(t, nilPayload.Audit(AuditSpeedIndex).Score.Valid())
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("desktop")
	require.NoError(t, err)
	assert.Equal(t, StrategyDesktop, s)

	s, err = ParseStrategy(" MOBILE ")
	require.NoError(t, err)
	assert.Equal(t, StrategyMobile, s)

	_, err = ParseStrategy("tablet")
	require.ErrorIs(t, err, ErrInvalidStrategy)
}
