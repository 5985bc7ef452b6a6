package importation

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/shared"
)

// DocumentKind classifies a file attached to a shipment
type DocumentKind string

const (
	DocumentKindInvoice      DocumentKind = "invoice"
	DocumentKindPackingList  DocumentKind = "packing_list"
	DocumentKindBillOfLading DocumentKind = "bill_of_lading"
	DocumentKindCustoms      DocumentKind = "customs_declaration"
	DocumentKindOther        DocumentKind = "other"
)

// IsValid returns true if the kind is known
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindInvoice, DocumentKindPackingList, DocumentKindBillOfLading, DocumentKindCustoms, DocumentKindOther:
		return true
	}
	return false
}

// ShipmentDocument is metadata of a file stored in object storage
type ShipmentDocument struct {
	shared.BaseEntity
	ShipmentID  uuid.UUID
	Kind        DocumentKind
	FileName    string
	ContentType string
	StorageKey  string
}

// NewShipmentDocument registers a document and derives its storage key
func NewShipmentDocument(shipmentID uuid.UUID, kind DocumentKind, fileName, contentType string) (*ShipmentDocument, error) {
	if shipmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHIPMENT", "Shipment ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_KIND", "Unknown document kind: "+string(kind))
	}
	name := sanitizeFileName(fileName)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	doc := &ShipmentDocument{
		BaseEntity:  shared.NewBaseEntity(),
		ShipmentID:  shipmentID,
		Kind:        kind,
		FileName:    name,
		ContentType: contentType,
	}
	doc.StorageKey = fmt.Sprintf("shipments/%s/%s/%s", shipmentID, doc.ID, name)
	return doc, nil
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
}
