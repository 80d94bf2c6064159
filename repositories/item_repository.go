package repositories

import (
	"fmt"

	"content-qa-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var itemSortColumns = map[string]bool{
	"id":         true,
	"type":       true,
	"created_at": true,
	"updated_at": true,
}

type ItemRepository interface {
	Create(item *models.Item) error
	Save(item *models.Item) error
	GetByID(id uint) (*models.Item, error)
	GetList(params models.ItemListParams) ([]models.Item, int64, error)
	Delete(id uint) error
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

// Create and Save leave QaState and Node alone; those have their own repositories.
func (r *itemRepository) Create(item *models.Item) error {
	return r.db.Omit(clause.Associations).Create(item).Error
}

func (r *itemRepository) Save(item *models.Item) error {
	return r.db.Omit(clause.Associations).Save(item).Error
}

func (r *itemRepository) GetByID(id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.Preload("QaState").First(&item, id).Error
	return &item, err
}

func (r *itemRepository) GetList(params models.ItemListParams) ([]models.Item, int64, error) {
	var items []models.Item
	var total int64

	query := r.db.Model(&models.Item{})

	if params.Type != "" {
		query = query.Where("items.type = ?", params.Type)
	}

	if params.AuthorID > 0 {
		query = query.Where("items.author_id = ?", params.AuthorID)
	}

	if params.Status != "" {
		query = query.Joins("JOIN qa_states ON qa_states.id = items.qa_state_id").
			Where("qa_states.status = ?", params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := params.SortBy
	if !itemSortColumns[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := params.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	page, limit := params.Page, params.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	err := query.Preload("QaState").
		Order(fmt.Sprintf("items.%s %s", sortBy, sortOrder)).
		Order("items.id " + sortOrder).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error

	return items, total, err
}

func (r *itemRepository) Delete(id uint) error {
	return r.db.Delete(&models.Item{}, id).Error
}
