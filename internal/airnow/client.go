package airnow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"aqi-query/internal/domain"
)

const (
	DefaultBaseURL  = "http://www.airnowapi.org/aq/observation/zipCode/current/"
	DefaultDistance = 20
	responseFormat  = "application/json"
)

var (
	ErrTransport = errors.New("airnow request failed")
	ErrDecode    = errors.New("airnow response could not be decoded")
)

// StatusError reports a non-2xx answer from the API.
type StatusError struct {
	Status int
	Body   string
}

func (e StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API returned status %d", e.Status)
	}
	return fmt.Sprintf("API returned status %d: %s", e.Status, e.Body)
}

// BuildRequestURL returns the current-observation query for zipCode.
func BuildRequestURL(baseURL, zipCode, apiKey string, distance int) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}
	q := u.Query()
	q.Set("format", responseFormat)
	q.Set("zipCode", zipCode)
	q.Set("distance", fmt.Sprint(distance))
	q.Set("API_KEY", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type Client struct {
	requestURL string
	httpClient *http.Client
}

func New(requestURL string) *Client {
	return &Client{
		requestURL: requestURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchObservations performs a single GET and decodes the observation array.
// An empty array is returned as an empty slice with no error.
func (c *Client) FetchObservations(ctx context.Context) ([]domain.Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", responseFormat)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %w", ErrTransport, StatusError{Status: resp.StatusCode, Body: string(body)})
	}

	var records []record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: response is not an array", ErrDecode)
	}

	observations := make([]domain.Observation, 0, len(records))
	for i, rec := range records {
		obs, err := rec.observation()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrDecode, i, err)
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

// record is the wire form of an observation. Numeric fields are pointers so
// that a missing or null value is told apart from zero.
type record struct {
	DateObserved  string `json:"DateObserved"`
	HourObserved  *int   `json:"HourObserved"`
	LocalTimeZone string `json:"LocalTimeZone"`
	StateCode     string `json:"StateCode"`
	ReportingArea string `json:"ReportingArea"`
	ParameterName string `json:"ParameterName"`
	AQI           *int   `json:"AQI"`
}

func (r record) observation() (domain.Observation, error) {
	switch {
	case r.DateObserved == "":
		return domain.Observation{}, errors.New("missing DateObserved")
	case r.ParameterName == "":
		return domain.Observation{}, errors.New("missing ParameterName")
	case r.HourObserved == nil:
		return domain.Observation{}, errors.New("missing HourObserved")
	case *r.HourObserved < 0 || *r.HourObserved > 23:
		return domain.Observation{}, fmt.Errorf("HourObserved %d out of range", *r.HourObserved)
	case r.AQI == nil:
		return domain.Observation{}, errors.New("missing AQI")
	case *r.AQI < 0:
		return domain.Observation{}, fmt.Errorf("negative AQI %d", *r.AQI)
	}
	return domain.Observation{
		DateObserved:  r.DateObserved,
		HourObserved:  *r.HourObserved,
		LocalTimeZone: r.LocalTimeZone,
		StateCode:     r.StateCode,
		ReportingArea: r.ReportingArea,
		ParameterName: r.ParameterName,
		AQI:           *r.AQI,
	}, nil
}
