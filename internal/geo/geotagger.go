package geo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"photodoc/internal/models"
)

// Fix is a raw position report from a Locator.
type Fix struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	At        time.Time
}

// Locator is the device geolocation seam.
type Locator interface {
	CurrentLocation(ctx context.Context) (Fix, error)
}

// Geocoder turns coordinates into a human-readable address. Implementations
// are expected to be slow and flaky; the tagger treats every failure as a
// fallback to the formatted coordinate string.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// GeoTagger enriches captures with a best-effort location. It never returns
// an error to the capture path: any failure yields a nil location.
type GeoTagger struct {
	locator        Locator
	geocoder       Geocoder
	timeout        time.Duration
	geocodeTimeout time.Duration
	maxAge         time.Duration
	log            zerolog.Logger

	mu      sync.Mutex
	last    Fix
	hasLast bool
}

func NewGeoTagger(locator Locator, geocoder Geocoder, timeout, geocodeTimeout, maxAge time.Duration, log zerolog.Logger) *GeoTagger {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if geocodeTimeout <= 0 {
		geocodeTimeout = 5 * time.Second
	}
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	return &GeoTagger{
		locator:        locator,
		geocoder:       geocoder,
		timeout:        timeout,
		geocodeTimeout: geocodeTimeout,
		maxAge:         maxAge,
		log:            log,
	}
}

// Available reports whether a locator is wired at all; it feeds the hasGPS
// capability flag.
func (g *GeoTagger) Available() bool {
	return g != nil && g.locator != nil
}

// CurrentLocation performs a single bounded location request, accepting a
// cached fix no older than maxAge. Nil means no location, never an error.
func (g *GeoTagger) CurrentLocation(ctx context.Context) *models.GPSLocation {
	if !g.Available() {
		return nil
	}

	g.mu.Lock()
	if g.hasLast && time.Since(g.last.At) <= g.maxAge {
		fix := g.last
		g.mu.Unlock()
		return &models.GPSLocation{Latitude: fix.Latitude, Longitude: fix.Longitude, Accuracy: fix.Accuracy}
	}
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	fix, err := g.locator.CurrentLocation(ctx)
	if err != nil {
		g.log.Debug().Err(err).Msg("location request failed")
		return nil
	}
	if fix.At.IsZero() {
		fix.At = time.Now()
	}

	g.mu.Lock()
	g.last = fix
	g.hasLast = true
	g.mu.Unlock()

	return &models.GPSLocation{Latitude: fix.Latitude, Longitude: fix.Longitude, Accuracy: fix.Accuracy}
}

// Tag returns the current location enriched with an address, or nil.
func (g *GeoTagger) Tag(ctx context.Context) *models.GPSLocation {
	loc := g.CurrentLocation(ctx)
	if loc == nil {
		return nil
	}
	loc.Address = g.Address(ctx, loc.Latitude, loc.Longitude)
	return loc
}

// Address reverse-geocodes, falling back to formatted coordinates on any
// failure.
func (g *GeoTagger) Address(ctx context.Context, lat, lng float64) string {
	fallback := FormatCoordinates(lat, lng)
	if g == nil || g.geocoder == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, g.geocodeTimeout)
	defer cancel()

	addr, err := g.geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil || addr == "" {
		if err != nil {
			g.log.Debug().Err(err).Msg("reverse geocode failed")
		}
		return fallback
	}
	return addr
}

func FormatCoordinates(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}
