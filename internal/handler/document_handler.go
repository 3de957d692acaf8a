package handler

import (
	"net/http"

	"dashboard/internal/apperror"
	"dashboard/internal/service"
	"dashboard/pkg/response"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService service.DocumentService
	requireAuth     gin.HandlerFunc
}

func NewDocumentHandler(documentService service.DocumentService, requireAuth gin.HandlerFunc) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, requireAuth: requireAuth}
}

func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	docs := router.Group("/api/documents")
	docs.Use(h.requireAuth)
	{
		docs.POST("", h.Upload)
		docs.GET("", h.List)
		docs.GET("/:id/download", h.Download)
		docs.DELETE("/:id", h.Delete)
	}
}

// Upload stores a shared document
// @Summary      Upload document
// @Description  Accepts pdf, docx, txt, xlsx and pptx files
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Document"
// @Success      201   {object}  response.Response{data=service.DocumentResponse}
// @Failure      400   {object}  response.Response
// @Router       /api/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperror.Validation("file is required"))
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		respondError(c, err)
		return
	}

	doc, err := h.documentService.Upload(c.Request.Context(), id, fh.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// List returns stored documents
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.DocumentResponse}
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documentService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, docs))
}

// Download streams a document as an attachment
// @Summary      Download document
// @Tags         documents
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  response.Response
// @Router       /api/documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	content, err := h.documentService.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", attachment(content.Filename))
	c.Data(http.StatusOK, "application/octet-stream", content.Data)
}

// Delete removes a document. Approver only.
// @Summary      Delete document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "document deleted"}))
}
