package repositories

import (
	"content-qa-cms/models"

	"gorm.io/gorm"
)

// ChangesetRepository only appends; changesets are never updated or deleted.
type ChangesetRepository interface {
	Create(changeset *models.Changeset) error
	ListByNode(nodeID uint) ([]models.Changeset, error)
	CountByNode(nodeID uint) (int64, error)
}

type changesetRepository struct {
	db *gorm.DB
}

func NewChangesetRepository(db *gorm.DB) ChangesetRepository {
	return &changesetRepository{db: db}
}

func (r *changesetRepository) Create(changeset *models.Changeset) error {
	return r.db.Create(changeset).Error
}

func (r *changesetRepository) ListByNode(nodeID uint) ([]models.Changeset, error) {
	var changesets []models.Changeset
	err := r.db.Where("node_id = ?", nodeID).
		Order("id desc").
		Find(&changesets).Error
	return changesets, err
}

func (r *changesetRepository) CountByNode(nodeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Changeset{}).Where("node_id = ?", nodeID).Count(&count).Error
	return count, err
}
