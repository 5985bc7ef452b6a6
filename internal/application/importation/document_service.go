package importation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/landedcost/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DocumentStorage presigns access to files kept in object storage
type DocumentStorage interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// GenerateDownloadURL returns a presigned GET URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// DocumentServiceConfig holds limits for shipment documents
type DocumentServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
	MaxPerShipment    int
}

// DefaultDocumentServiceConfig returns the default limits
func DefaultDocumentServiceConfig() DocumentServiceConfig {
	return DocumentServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
		MaxPerShipment:    50,
	}
}

// allowedDocumentTypes are the content types accepted for shipment paperwork
var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"application/xml": true,
	"text/xml":        true,
	"text/csv":        true,
	"text/plain":      true,
	"image/jpeg":      true,
	"image/png":       true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel":                                          true,
	"application/octet-stream":                                          true,
}

// RegisterDocumentRequest registers a file to be uploaded for a shipment
type RegisterDocumentRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=invoice packing_list bill_of_lading customs_declaration other"`
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"max=127"`
}

// DocumentResponse represents document metadata in API responses
type DocumentResponse struct {
	ID          uuid.UUID  `json:"id"`
	ShipmentID  uuid.UUID  `json:"shipment_id"`
	Kind        string     `json:"kind"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	DownloadURL string     `json:"download_url,omitempty"`
	URLExpires  *time.Time `json:"url_expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DocumentUploadResponse is returned when a document is registered
type DocumentUploadResponse struct {
	Document  DocumentResponse `json:"document"`
	UploadURL string           `json:"upload_url"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// DocumentService manages files attached to shipments.
// Metadata lives in the database; content goes straight to object storage
// through presigned URLs.
type DocumentService struct {
	shipmentRepo importation.ShipmentRepository
	documentRepo importation.ShipmentDocumentRepository
	storage      DocumentStorage
	config       DocumentServiceConfig
	logger       *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	shipmentRepo importation.ShipmentRepository,
	documentRepo importation.ShipmentDocumentRepository,
	storage DocumentStorage,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		shipmentRepo: shipmentRepo,
		documentRepo: documentRepo,
		storage:      storage,
		config:       DefaultDocumentServiceConfig(),
		logger:       logger,
	}
}

// SetConfig replaces the service limits
func (s *DocumentService) SetConfig(cfg DocumentServiceConfig) {
	s.config = cfg
}

// RegisterDocument stores the metadata and returns a presigned upload URL
func (s *DocumentService) RegisterDocument(ctx context.Context, shipmentID uuid.UUID, req RegisterDocumentRequest) (*DocumentUploadResponse, error) {
	if _, err := s.shipmentRepo.FindByID(ctx, shipmentID); err != nil {
		return nil, err
	}

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if contentType != "" && !allowedDocumentTypes[contentType] {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed for shipment documents", req.ContentType))
	}

	existing, err := s.documentRepo.FindByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if s.config.MaxPerShipment > 0 && len(existing) >= s.config.MaxPerShipment {
		return nil, shared.NewDomainError("DOCUMENT_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d documents per shipment allowed", s.config.MaxPerShipment))
	}

	doc, err := importation.NewShipmentDocument(shipmentID, importation.DocumentKind(req.Kind), req.FileName, contentType)
	if err != nil {
		return nil, err
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, doc.StorageKey, doc.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		if delErr := s.documentRepo.Delete(ctx, doc.ID); delErr != nil {
			s.logger.Warn("failed to remove document after presign failure",
				zap.String("document_id", doc.ID.String()),
				zap.Error(delErr),
			)
		}
		s.logger.Error("failed to presign document upload",
			zap.String("shipment_id", shipmentID.String()),
			zap.Error(err),
		)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	s.logger.Info("shipment document registered",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("kind", string(doc.Kind)),
	)

	return &DocumentUploadResponse{
		Document:  toDocumentResponse(doc),
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// ListDocuments returns the shipment's documents with presigned download URLs.
// A document whose URL cannot be presigned is returned without one.
func (s *DocumentService) ListDocuments(ctx context.Context, shipmentID uuid.UUID) ([]DocumentResponse, error) {
	if _, err := s.shipmentRepo.FindByID(ctx, shipmentID); err != nil {
		return nil, err
	}
	docs, err := s.documentRepo.FindByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	responses := make([]DocumentResponse, len(docs))
	for i := range docs {
		responses[i] = toDocumentResponse(&docs[i])
		url, expires, err := s.storage.GenerateDownloadURL(ctx, docs[i].StorageKey, s.config.DownloadURLExpiry)
		if err != nil {
			s.logger.Warn("failed to presign document download",
				zap.String("document_id", docs[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		responses[i].DownloadURL = url
		responses[i].URLExpires = &expires
	}
	return responses, nil
}

// DeleteDocument removes the stored object and then the metadata
func (s *DocumentService) DeleteDocument(ctx context.Context, shipmentID, documentID uuid.UUID) error {
	doc, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.ShipmentID != shipmentID {
		return shared.ErrNotFound
	}

	if err := s.storage.DeleteObject(ctx, doc.StorageKey); err != nil {
		return fmt.Errorf("failed to delete document object: %w", err)
	}
	if err := s.documentRepo.Delete(ctx, doc.ID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	s.logger.Info("shipment document deleted",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("document_id", documentID.String()),
	)
	return nil
}

func toDocumentResponse(d *importation.ShipmentDocument) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		ShipmentID:  d.ShipmentID,
		Kind:        string(d.Kind),
		FileName:    d.FileName,
		ContentType: d.ContentType,
		CreatedAt:   d.CreatedAt,
	}
}
