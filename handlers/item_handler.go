package handlers

import (
	"content-qa-cms/helper"
	"content-qa-cms/middleware"
	"content-qa-cms/models"
	"content-qa-cms/rules"
	"content-qa-cms/services"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	itemService services.ItemService
	qaService   services.QaStateService
	Helper      *helper.HTTPHelper
}

func NewItemHandler(itemService services.ItemService, qaService services.QaStateService, h *helper.HTTPHelper) *ItemHandler {
	return &ItemHandler{itemService: itemService, qaService: qaService, Helper: h}
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}
	if !h.Helper.ValidateRequest(c, req) {
		return
	}

	detail, err := h.itemService.CreateItem(c.Request.Context(), req, userID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Item created successfully", detail)
}

func (h *ItemHandler) GetItems(c *gin.Context) {
	var params models.ItemListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 10
	}

	items, total, err := h.itemService.GetItems(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", gin.H{
		"items":      items,
		"pagination": h.Helper.GeneratePaging(c, params.Limit, params.Page, int(total)),
	})
}

func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	detail, err := h.itemService.GetItem(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", detail)
}

func (h *ItemHandler) SaveStep(c *gin.Context) {
	h.saveStep(c, "")
}

func (h *ItemHandler) SaveTranslationStep(c *gin.Context) {
	h.saveStep(c, c.Param("language"))
}

func (h *ItemHandler) saveStep(c *gin.Context, language string) {
	userID, _ := middleware.CurrentUserID(c)
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.SaveStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}
	if !h.Helper.ValidateRequest(c, req) {
		return
	}

	var (
		detail *models.ItemDetail
		err    error
	)
	if language == "" {
		detail, err = h.itemService.SaveStep(c.Request.Context(), id, c.Param("step"), req, userID)
	} else {
		detail, err = h.itemService.SaveTranslationStep(c.Request.Context(), id, language, c.Param("step"), req, userID)
	}
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Item saved successfully", detail)
}

func (h *ItemHandler) ChangeStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}
	if !h.Helper.ValidateRequest(c, req) {
		return
	}

	if err := h.qaService.ChangeStatus(c.Request.Context(), id, req.Status); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.respondWithItem(c, id, "Status changed successfully")
}

func (h *ItemHandler) SetPermissions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.SetPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	if err := h.qaService.SetPermissions(c.Request.Context(), id, req.AllowReview, req.AllowPublish); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.respondWithItem(c, id, "Permissions updated successfully")
}

func (h *ItemHandler) Publish(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.qaService.Publish(c.Request.Context(), id); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.respondWithItem(c, id, "Item published successfully")
}

func (h *ItemHandler) Unpublish(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.qaService.Unpublish(c.Request.Context(), id); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.respondWithItem(c, id, "Item unpublished successfully")
}

func (h *ItemHandler) GetChangesets(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	changesets, err := h.itemService.GetChangesets(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", changesets)
}

// GetProgress reports the progress of ?scenario=, e.g. "publishable" or "translate_into_de".
func (h *ItemHandler) GetProgress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	scenario, err := rules.ParseScenario(c.Query("scenario"))
	if err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	report, err := h.itemService.GetProgress(c.Request.Context(), id, scenario)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", report)
}

func (h *ItemHandler) respondWithItem(c *gin.Context, id uint, message string) {
	detail, err := h.itemService.GetItem(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, message, detail)
}
