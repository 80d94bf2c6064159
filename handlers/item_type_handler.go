package handlers

import (
	"content-qa-cms/config"
	"content-qa-cms/helper"
	"content-qa-cms/rules"

	"github.com/gin-gonic/gin"
)

type ItemTypeHandler struct {
	definitions *config.Definitions
	Helper      *helper.HTTPHelper
}

func NewItemTypeHandler(definitions *config.Definitions, h *helper.HTTPHelper) *ItemTypeHandler {
	return &ItemTypeHandler{definitions: definitions, Helper: h}
}

func (h *ItemTypeHandler) GetItemTypes(c *gin.Context) {
	h.Helper.SendSuccess(c, "Success", gin.H{
		"source_language": h.definitions.SourceLanguage,
		"languages":       h.definitions.Languages,
		"item_types":      h.definitions.ItemTypes,
	})
}

// GetRules returns the rules of an item type as derived for an empty item.
func (h *ItemTypeHandler) GetRules(c *gin.Context) {
	def, ok := h.definitions.Lookup(c.Param("name"))
	if !ok {
		h.Helper.SendNotFoundError(c, "Item type not found", h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Success", rules.Derive(def, h.definitions.TranslationLanguages(), rules.Values{}))
}
