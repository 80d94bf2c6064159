package handlers

import (
	"content-qa-cms/helper"
	"content-qa-cms/models"
	"content-qa-cms/services"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	groupService services.GroupService
	Helper       *helper.HTTPHelper
}

func NewGroupHandler(groupService services.GroupService, h *helper.HTTPHelper) *GroupHandler {
	return &GroupHandler{groupService: groupService, Helper: h}
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}
	if !h.Helper.ValidateRequest(c, req) {
		return
	}

	group, err := h.groupService.CreateGroup(req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Group created successfully", group)
}

func (h *GroupHandler) GetGroups(c *gin.Context) {
	groups, err := h.groupService.GetGroups()
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", groups)
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid group ID", h.Helper.EmptyJsonMap())
		return
	}

	group, err := h.groupService.GetGroup(id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", group)
}

func (h *GroupHandler) GetItemGroups(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	joins, err := h.groupService.GetItemGroups(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", joins)
}

func (h *GroupHandler) AttachItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.AttachGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}
	if !h.Helper.ValidateRequest(c, req) {
		return
	}

	joins, err := h.groupService.AttachItem(c.Request.Context(), id, req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Item attached to group", joins)
}

func (h *GroupHandler) DetachItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	groupID, groupOK := paramID(c, "group_id")
	if !ok || !groupOK {
		h.Helper.SendBadRequest(c, "Invalid item or group ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.groupService.DetachItem(c.Request.Context(), id, groupID); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Item detached from group", h.Helper.EmptyJsonMap())
}
