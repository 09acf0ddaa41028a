package camera

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"photodoc/internal/models"
)

var frontLabelHints = []string{"front", "user", "facetime", "selfie"}
var backLabelHints = []string{"back", "rear", "environment", "world"}

// Probe detects what the device can do. It opens a transient
// environment-facing stream purely to read track settings and stops it
// immediately. Every failure degrades to false capability flags; Probe never
// returns an error.
func Probe(ctx context.Context, drv Driver, gpsAvailable bool, log zerolog.Logger) models.CameraCapabilities {
	caps := models.CameraCapabilities{HasGPS: gpsAvailable}

	if drv == nil {
		return caps
	}

	devices, err := drv.EnumerateDevices(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("device enumeration failed, reporting no camera")
		return caps
	}
	if len(devices) == 0 {
		return caps
	}

	for _, d := range devices {
		label := strings.ToLower(d.Label)
		if containsAny(label, frontLabelHints) {
			caps.HasFrontCamera = true
		}
		if containsAny(label, backLabelHints) {
			caps.HasBackCamera = true
		}
	}

	stream, err := drv.Open(ctx, StreamConstraints{Facing: FacingBack})
	if err != nil {
		log.Debug().Err(err).Msg("probe stream denied, reporting no camera")
		return caps
	}
	settings := stream.Settings()
	// The probe stream must never stay open.
	stream.Stop()

	caps.HasCamera = true
	caps.HasFlash = settings.HasFlash
	caps.MaxResolution = models.Resolution{Width: settings.Width, Height: settings.Height}
	caps.SupportedFormats = []string{"image/jpeg", "image/png"}
	caps.CompressionSupported = true

	return caps
}

func containsAny(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}
