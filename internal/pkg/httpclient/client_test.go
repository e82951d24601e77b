package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestPostJSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ORDER_CREATED", in["eventKind"])

		_ = json.NewEncoder(w).Encode(map[string]any{"message": "OK"})
	}))
	defer srv.Close()

	c := NewClient(noop.NewTracerProvider().Tracer("test"))
	var out struct {
		Message string `json:"message"`
	}
	err := c.PostJSON(context.Background(), srv.URL+"/functions/x/invocations", map[string]string{"eventKind": "ORDER_CREATED"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "OK", out.Message)
}

func TestPostJSONNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(noop.NewTracerProvider().Tracer("test"))
	err := c.PostJSON(context.Background(), srv.URL, map[string]string{}, nil)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "boom")
}
