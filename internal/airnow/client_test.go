package airnow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqi-query/internal/domain"
)

const sampleBody = `[
  {"DateObserved":"2021-06-01 ","HourObserved":14,"LocalTimeZone":"PST","ReportingArea":"Sacramento","StateCode":"CA","Latitude":38.57,"Longitude":-121.47,"ParameterName":"O3","AQI":42,"Category":{"Number":1,"Name":"Good"}},
  {"DateObserved":"2021-06-01 ","HourObserved":14,"LocalTimeZone":"PST","ReportingArea":"Sacramento","StateCode":"CA","Latitude":38.57,"Longitude":-121.47,"ParameterName":"PM2.5","AQI":17,"Category":{"Number":1,"Name":"Good"}}
]`

func TestBuildRequestURL(t *testing.T) {
	raw, err := BuildRequestURL(DefaultBaseURL, "95814", "secret-key", DefaultDistance)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.airnowapi.org", u.Host)
	assert.Equal(t, "/aq/observation/zipCode/current/", u.Path)

	q := u.Query()
	assert.Equal(t, "application/json", q.Get("format"))
	assert.Equal(t, "95814", q.Get("zipCode"))
	assert.Equal(t, "20", q.Get("distance"))
	assert.Equal(t, "secret-key", q.Get("API_KEY"))

	_, err = BuildRequestURL("://bad", "95814", "k", DefaultDistance)
	assert.Error(t, err)
}

func TestClient_FetchObservations(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleBody))
	}))
	defer server.Close()

	requestURL, err := BuildRequestURL(server.URL, "95814", "k", DefaultDistance)
	require.NoError(t, err)

	observations, err := New(requestURL).FetchObservations(context.Background())
	require.NoError(t, err)
	require.Len(t, observations, 2)

	assert.Equal(t, domain.Observation{
		DateObserved:  "2021-06-01 ",
		HourObserved:  14,
		LocalTimeZone: "PST",
		StateCode:     "CA",
		ReportingArea: "Sacramento",
		ParameterName: "O3",
		AQI:           42,
	}, observations[0])
	assert.Equal(t, "PM2.5", observations[1].ParameterName)
	assert.Equal(t, "95814", gotQuery.Get("zipCode"))
}

func TestClient_FetchObservations_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	observations, err := New(server.URL).FetchObservations(context.Background())
	assert.NoError(t, err, "An empty result set is not an error")
	assert.NotNil(t, observations)
	assert.Len(t, observations, 0)
}

func TestClient_FetchObservations_ZeroValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"DateObserved":"2021-06-01","HourObserved":0,"ParameterName":"PM10","AQI":0}]`))
	}))
	defer server.Close()

	observations, err := New(server.URL).FetchObservations(context.Background())
	require.NoError(t, err, "Zero is a valid hour and AQI")
	require.Len(t, observations, 1)
	assert.Equal(t, 0, observations[0].HourObserved)
	assert.Equal(t, 0, observations[0].AQI)
}

func TestClient_FetchObservations_Errors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"malformed json", http.StatusOK, `{"not":"an array"}`, ErrDecode},
		{"wrong field type", http.StatusOK, `[{"DateObserved":"2021-06-01","HourObserved":"14","ParameterName":"O3","AQI":1}]`, ErrDecode},
		{"missing parameter", http.StatusOK, `[{"DateObserved":"2021-06-01","HourObserved":1,"AQI":1}]`, ErrDecode},
		{"hour out of range", http.StatusOK, `[{"DateObserved":"2021-06-01","HourObserved":24,"ParameterName":"O3","AQI":1}]`, ErrDecode},
		{"missing hour", http.StatusOK, `[{"DateObserved":"2021-06-01","ParameterName":"O3","AQI":1}]`, ErrDecode},
		{"missing aqi", http.StatusOK, `[{"DateObserved":"2021-06-01","HourObserved":1,"ParameterName":"O3"}]`, ErrDecode},
		{"null aqi", http.StatusOK, `[{"DateObserved":"2021-06-01","HourObserved":1,"ParameterName":"O3","AQI":null}]`, ErrDecode},
		{"negative aqi", http.StatusOK, `[{"DateObserved":"2021-06-01","HourObserved":1,"ParameterName":"O3","AQI":-5}]`, ErrDecode},
		{"null body", http.StatusOK, `null`, ErrDecode},
		{"server error", http.StatusInternalServerError, `oops`, ErrTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			observations, err := New(server.URL).FetchObservations(context.Background())
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, observations)
		})
	}
}

func TestClient_FetchObservations_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid API key", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := New(server.URL).FetchObservations(context.Background())

	var statusErr StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.Status)
	assert.Contains(t, statusErr.Error(), "invalid API key")
}

func TestClient_FetchObservations_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	requestURL := server.URL
	server.Close()

	_, err := New(requestURL).FetchObservations(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrDecode)
}

func TestClient_FetchObservations_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(server.URL).FetchObservations(ctx)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}
