package models

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CameraCapabilities is probed once at service construction and held for the
// process lifetime. A failed probe yields the zero value rather than an error.
type CameraCapabilities struct {
	HasCamera            bool       `json:"hasCamera"`
	HasFrontCamera       bool       `json:"hasFrontCamera"`
	HasBackCamera        bool       `json:"hasBackCamera"`
	HasFlash             bool       `json:"hasFlash"`
	HasGPS               bool       `json:"hasGPS"`
	MaxResolution        Resolution `json:"maxResolution"`
	SupportedFormats     []string   `json:"supportedFormats"`
	CompressionSupported bool       `json:"compressionSupported"`
}
