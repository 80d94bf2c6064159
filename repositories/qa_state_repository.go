package repositories

import (
	"content-qa-cms/models"

	"gorm.io/gorm"
)

type QaStateRepository interface {
	Create(state *models.QaState) error
	Save(state *models.QaState) error
	GetByID(id uint) (*models.QaState, error)
}

type qaStateRepository struct {
	db *gorm.DB
}

func NewQaStateRepository(db *gorm.DB) QaStateRepository {
	return &qaStateRepository{db: db}
}

func (r *qaStateRepository) Create(state *models.QaState) error {
	return r.db.Create(state).Error
}

func (r *qaStateRepository) Save(state *models.QaState) error {
	return r.db.Save(state).Error
}

func (r *qaStateRepository) GetByID(id uint) (*models.QaState, error) {
	var state models.QaState
	err := r.db.First(&state, id).Error
	return &state, err
}
