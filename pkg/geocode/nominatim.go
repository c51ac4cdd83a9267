// Package geocode resolves free-text place names to coordinates with the
// OpenStreetMap Nominatim search API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/oliuba/web-map/pkg/geo"
)

const (
	DefaultURL       = "https://nominatim.openstreetmap.org/search"
	DefaultUserAgent = "web_map"
	// MinInterval is the smallest delay between two requests the public
	// Nominatim usage policy allows.
	MinInterval = time.Second
)

var ErrNotFound = errors.New("place not found")

// StatusError reports a non-200 response from the service.
type StatusError struct {
	Place  string
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocoding %q: unexpected status %s", e.Place, e.Status)
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Nominatim is a rate limited geocoder. Requests are spaced at least the
// configured interval apart; callers must not share one value between
// goroutines expecting independent limits.
type Nominatim struct {
	httpClient *http.Client
	url        string
	userAgent  string
	limiter    *rate.Limiter
}

type Option func(*Nominatim)

func WithURL(u string) Option {
	return func(n *Nominatim) {
		n.url = u
	}
}

func WithUserAgent(ua string) Option {
	return func(n *Nominatim) {
		n.userAgent = ua
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(n *Nominatim) {
		n.httpClient = c
	}
}

// WithInterval sets the minimum delay between consecutive requests. A zero
// interval disables rate limiting and is only meant for tests against a local
// server.
func WithInterval(d time.Duration) Option {
	return func(n *Nominatim) {
		if d <= 0 {
			n.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		n.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

func New(opts ...Option) *Nominatim {
	n := &Nominatim{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        DefaultURL,
		userAgent:  DefaultUserAgent,
		limiter:    rate.NewLimiter(rate.Every(MinInterval), 1),
	}
	for _, f := range opts {
		f(n)
	}
	return n
}

// Geocode returns the coordinates of the best match for place. Any failure,
// including an unreachable service, is reported as not found.
func (n *Nominatim) Geocode(ctx context.Context, place string) (geo.Coordinates, bool) {
	c, err := n.Search(ctx, place)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("Geocoding failed", "place", place, "error", err)
		}
		return geo.Coordinates{}, false
	}
	return c, true
}

// Search performs a single lookup, waiting for the rate limiter first.
func (n *Nominatim) Search(ctx context.Context, place string) (geo.Coordinates, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return geo.Coordinates{}, err
	}

	u, err := url.Parse(n.url)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("bad geocoder URL %q: %w", n.url, err)
	}
	params := u.Query()
	params.Set("q", place)
	params.Set("format", "json")
	params.Set("limit", "1")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return geo.Coordinates{}, err
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("error getting %s: %w", n.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinates{}, &StatusError{Place: place, Status: resp.Status}
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return geo.Coordinates{}, fmt.Errorf("error decoding response for %q: %w", place, err)
	}
	if len(results) == 0 {
		return geo.Coordinates{}, fmt.Errorf("%w: %s", ErrNotFound, place)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("bad latitude %q for %q: %w", first.Lat, place, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("bad longitude %q for %q: %w", first.Lon, place, err)
	}
	slog.Debug("Geocoded place", "place", place, "match", first.DisplayName, "lat", lat, "lon", lon)
	return geo.Coordinates{Lat: lat, Lon: lon}, nil
}
