package repositories

import (
	"content-qa-cms/models"

	"gorm.io/gorm"
)

type NodeRepository interface {
	Create(node *models.Node) error
	GetByID(id uint) (*models.Node, error)
}

type nodeRepository struct {
	db *gorm.DB
}

func NewNodeRepository(db *gorm.DB) NodeRepository {
	return &nodeRepository{db: db}
}

func (r *nodeRepository) Create(node *models.Node) error {
	return r.db.Create(node).Error
}

func (r *nodeRepository) GetByID(id uint) (*models.Node, error) {
	var node models.Node
	err := r.db.Preload("NodeHasGroups.Group").First(&node, id).Error
	return &node, err
}
