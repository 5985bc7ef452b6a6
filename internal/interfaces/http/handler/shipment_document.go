package handler

import (
	"github.com/gin-gonic/gin"
	appimport "github.com/landedcost/backend/internal/application/importation"
)

// ShipmentDocumentHandler handles the paperwork attached to shipments.
// File content never passes through the API; clients use presigned URLs.
type ShipmentDocumentHandler struct {
	BaseHandler
	documentService *appimport.DocumentService
}

// NewShipmentDocumentHandler creates a new ShipmentDocumentHandler
func NewShipmentDocumentHandler(documentService *appimport.DocumentService) *ShipmentDocumentHandler {
	return &ShipmentDocumentHandler{documentService: documentService}
}

// Register godoc
// @ID           registerShipmentDocument
// @Summary      Register a shipment document
// @Description  Store document metadata and return a presigned URL for uploading the file
// @Tags         shipment-documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        request body appimport.RegisterDocumentRequest true "Document metadata"
// @Success      201 {object} APIResponse[appimport.DocumentUploadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      415 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /shipments/{id}/documents [post]
func (h *ShipmentDocumentHandler) Register(c *gin.Context) {
	shipmentID, ok := h.parseIDParam(c, "id", "shipment")
	if !ok {
		return
	}

	var req appimport.RegisterDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	upload, err := h.documentService.RegisterDocument(c.Request.Context(), shipmentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, upload)
}

// List godoc
// @ID           listShipmentDocuments
// @Summary      List shipment documents
// @Description  List documents with presigned download URLs
// @Tags         shipment-documents
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      200 {object} APIResponse[[]appimport.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /shipments/{id}/documents [get]
func (h *ShipmentDocumentHandler) List(c *gin.Context) {
	shipmentID, ok := h.parseIDParam(c, "id", "shipment")
	if !ok {
		return
	}

	docs, err := h.documentService.ListDocuments(c.Request.Context(), shipmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, docs)
}

// Delete godoc
// @ID           deleteShipmentDocument
// @Summary      Delete a shipment document
// @Description  Remove the stored file and its metadata
// @Tags         shipment-documents
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        documentId path string true "Document ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /shipments/{id}/documents/{documentId} [delete]
func (h *ShipmentDocumentHandler) Delete(c *gin.Context) {
	shipmentID, ok := h.parseIDParam(c, "id", "shipment")
	if !ok {
		return
	}
	documentID, ok := h.parseIDParam(c, "documentId", "document")
	if !ok {
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), shipmentID, documentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
