package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-radio/stationctl/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithDelay(0),
	)
}

func TestReverse_RequestShape(t *testing.T) {
	var gotQuery map[string]string
	var gotUA string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"address": {"city": "Athens", "state": "Attica"}}`))
	})

	result, err := client.Reverse(context.Background(), 37.98381, 23.72754)
	require.NoError(t, err)

	assert.Equal(t, "jsonv2", gotQuery["format"])
	assert.Equal(t, "37.983810", gotQuery["lat"])
	assert.Equal(t, "23.727540", gotQuery["lon"])
	assert.Equal(t, "1", gotQuery["addressdetails"])
	assert.Equal(t, "en", gotQuery["accept-language"])
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "Athens", result.Address.Field("city"))
}

func TestReverse_NonJSONContentType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>blocked</html>"))
	})

	_, err := client.Reverse(context.Background(), 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedContentType)
}

func TestReverse_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	_, err := client.Reverse(context.Background(), 1, 2)
	require.Error(t, err)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestReverse_CanceledDuringWait(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:0"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The canceled context must surface from the limiter wait, before any
	// network activity.
	_, err := client.Reverse(ctx, 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAddress_First(t *testing.T) {
	addr := Address{
		"city":   "",
		"town":   "  ",
		"county": "Achaia",
		"state":  "Western Greece",
		"weird":  42,
	}
	assert.Equal(t, "Achaia", addr.First(AddressPriority...))
	assert.Equal(t, "", addr.Field("weird"), "non-string values read as absent")
	assert.Equal(t, "", addr.First("city", "town"))
}
