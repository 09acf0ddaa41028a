package models

import "time"

type RecordType string

const (
	RecordPurchaseOrder        RecordType = "PURCHASE_ORDER"
	RecordGoodsReceipt         RecordType = "GOODS_RECEIPT"
	RecordDeliveryConfirmation RecordType = "DELIVERY_CONFIRMATION"
)

// AssociatedRecord links a photo to the business record it documents.
type AssociatedRecord struct {
	Type         RecordType `json:"type"`
	RecordID     string     `json:"recordId"`
	RecordNumber string     `json:"recordNumber"`
}

type GPSLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Address   string  `json:"address,omitempty"`
}

type CameraSettings struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	FacingMode string `json:"facingMode"`
	Flash      bool   `json:"flash,omitempty"`
}

type CompressionInfo struct {
	OriginalSize     int64   `json:"originalSize"`
	CompressedSize   int64   `json:"compressedSize"`
	CompressionRatio float64 `json:"compressionRatio"`
	Quality          float64 `json:"quality"`
}

type PhotoMetadata struct {
	CapturedAt     time.Time       `json:"capturedAt"`
	DeviceInfo     string          `json:"deviceInfo"`
	GPSLocation    *GPSLocation    `json:"gpsLocation,omitempty"`
	CameraSettings CameraSettings  `json:"cameraSettings"`
	Compression    CompressionInfo `json:"compression"`
	RemoteURL      string          `json:"remoteUrl,omitempty"`
}

// CameraPhoto is the unit the capture pipeline produces. The raw blobs are
// transient and never serialized; only the thumbnail and metadata survive a
// restart of the local cache tier.
type CameraPhoto struct {
	ID                string             `json:"id"`
	Filename          string             `json:"filename"`
	OriginalBlob      []byte             `json:"-"`
	CompressedBlob    []byte             `json:"-"`
	Thumbnail         string             `json:"thumbnail"`
	Metadata          PhotoMetadata      `json:"metadata"`
	Tags              []string           `json:"tags"`
	AssociatedRecords []AssociatedRecord `json:"associatedRecords"`
}

// ReleaseBlobs drops the transient image payloads. Called on deletion so the
// bytes are reclaimable even if a caller still holds the record.
func (p *CameraPhoto) ReleaseBlobs() {
	p.OriginalBlob = nil
	p.CompressedBlob = nil
}

// WithoutBlobs returns a deep copy suitable for gallery membership,
// persistence and read accessors: same record, no ownership of the image
// bytes, no aliasing of the source's slices or pointers.
func (p *CameraPhoto) WithoutBlobs() CameraPhoto {
	out := *p
	out.OriginalBlob = nil
	out.CompressedBlob = nil
	out.Tags = append([]string(nil), p.Tags...)
	out.AssociatedRecords = append([]AssociatedRecord(nil), p.AssociatedRecords...)
	if p.Metadata.GPSLocation != nil {
		loc := *p.Metadata.GPSLocation
		out.Metadata.GPSLocation = &loc
	}
	return out
}
