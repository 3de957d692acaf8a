package handler

import (
	"net/http"
	"strconv"
	"strings"

	"dashboard/internal/apperror"
	"dashboard/internal/model"
	"dashboard/internal/service"
	"dashboard/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
	requireAuth     gin.HandlerFunc
}

func NewPurchaseHandler(purchaseService service.PurchaseService, requireAuth gin.HandlerFunc) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService, requireAuth: requireAuth}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/purchase-requests")
	requests.Use(h.requireAuth)
	{
		requests.POST("", h.Submit)
		requests.GET("", h.ListAll)
		requests.GET("/pending", h.ListPending)
		requests.GET("/:id", h.Get)
		requests.GET("/:id/image", h.Image)
		requests.PUT("/:id/approve", h.Approve)
		requests.PUT("/:id/reject", h.Reject)
	}
}

type SubmitResponse struct {
	ID uint `json:"id"`
}

func parseSubmitForm(c *gin.Context) (service.SubmitPurchaseRequestDTO, error) {
	var req service.SubmitPurchaseRequestDTO

	serial, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("serial_number")), 10, 64)
	if err != nil {
		return req, apperror.Validation("serial_number must be an integer")
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(c.PostForm("quantity")))
	if err != nil {
		return req, apperror.Validation("quantity must be an integer")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("unit_price")))
	if err != nil {
		return req, apperror.Validation("unit_price must be a number")
	}
	image, err := optionalFile(c, "image")
	if err != nil {
		return req, err
	}

	req.SerialNumber = serial
	req.ItemName = c.PostForm("item_name")
	req.UnitPrice = price
	req.Quantity = quantity
	req.Reason = c.PostForm("reason")
	req.Image = image
	return req, nil
}

// Submit creates a purchase request and notifies the approver
// @Summary      Submit purchase request
// @Description  Creates a Pending purchase request. Serial numbers are not required to be unique.
// @Tags         purchase-requests
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        serial_number  formData  int     true   "Serial number"
// @Param        item_name      formData  string  true   "Item name"
// @Param        unit_price     formData  number  true   "Unit price"
// @Param        quantity       formData  int     true   "Quantity"
// @Param        reason         formData  string  true   "Reason"
// @Param        image          formData  file    false  "Item image"
// @Success      201  {object}  response.Response{data=SubmitResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/purchase-requests [post]
func (h *PurchaseHandler) Submit(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	req, err := parseSubmitForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	requestID, err := h.purchaseService.Submit(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, SubmitResponse{ID: requestID}))
}

// ListAll returns every purchase request
// @Summary      List purchase requests
// @Description  All requests of every member, newest first
// @Tags         purchase-requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.PurchaseRequestResponse}
// @Router       /api/purchase-requests [get]
func (h *PurchaseHandler) ListAll(c *gin.Context) {
	requests, err := h.purchaseService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// ListPending returns the approver's review queue
// @Summary      Pending purchase requests
// @Description  Pending requests oldest first. Approver only.
// @Tags         purchase-requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.PurchaseRequestResponse}
// @Failure      403  {object}  response.Response
// @Router       /api/purchase-requests/pending [get]
func (h *PurchaseHandler) ListPending(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	requests, err := h.purchaseService.ListPending(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// Get returns a single purchase request
// @Summary      Get purchase request
// @Tags         purchase-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Purchase request ID"
// @Success      200  {object}  response.Response{data=service.PurchaseRequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/purchase-requests/{id} [get]
func (h *PurchaseHandler) Get(c *gin.Context) {
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	pr, err := h.purchaseService.Get(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pr))
}

// Image streams the request's attached image
// @Summary      Purchase request image
// @Tags         purchase-requests
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id   path      int  true  "Purchase request ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  response.Response
// @Router       /api/purchase-requests/{id}/image [get]
func (h *PurchaseHandler) Image(c *gin.Context) {
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := h.purchaseService.Image(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

// Approve approves a pending purchase request
// @Summary      Approve purchase request
// @Tags         purchase-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Purchase request ID"
// @Success      200  {object}  response.Response{data=service.PurchaseRequestResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/purchase-requests/{id}/approve [put]
func (h *PurchaseHandler) Approve(c *gin.Context) {
	h.decide(c, model.PurchaseStatusApproved)
}

// Reject rejects a pending purchase request
// @Summary      Reject purchase request
// @Tags         purchase-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Purchase request ID"
// @Success      200  {object}  response.Response{data=service.PurchaseRequestResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/purchase-requests/{id}/reject [put]
func (h *PurchaseHandler) Reject(c *gin.Context) {
	h.decide(c, model.PurchaseStatusRejected)
}

func (h *PurchaseHandler) decide(c *gin.Context, decision string) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	pr, err := h.purchaseService.Decide(c.Request.Context(), id, requestID, decision)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pr))
}
