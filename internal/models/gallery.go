package models

import "time"

// PurchaseOrderRef is a point-in-time snapshot of the order a gallery
// documents, not a live reference into the purchasing tables.
type PurchaseOrderRef struct {
	ID           string `json:"id"`
	Number       string `json:"number"`
	SupplierName string `json:"supplierName"`
}

type PhotoGallery struct {
	ID                      string            `json:"id"`
	Name                    string            `json:"name"`
	Description             string            `json:"description"`
	Photos                  []CameraPhoto     `json:"photos"`
	CreatedAt               time.Time         `json:"createdAt"`
	AssociatedPurchaseOrder *PurchaseOrderRef `json:"associatedPurchaseOrder,omitempty"`
	Tags                    []string          `json:"tags"`
	IsPublic                bool              `json:"isPublic"`
}

// Clone returns a deep copy that shares nothing with the receiver, so a
// caller can hold it while the original keeps changing.
func (g *PhotoGallery) Clone() PhotoGallery {
	out := *g
	out.Photos = make([]CameraPhoto, len(g.Photos))
	for i := range g.Photos {
		out.Photos[i] = g.Photos[i].WithoutBlobs()
	}
	out.Tags = append([]string(nil), g.Tags...)
	if g.AssociatedPurchaseOrder != nil {
		po := *g.AssociatedPurchaseOrder
		out.AssociatedPurchaseOrder = &po
	}
	return out
}
