package repositories

import (
	"content-qa-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository interface {
	Create(group *models.Group) error
	GetByName(name string) (*models.Group, error)
	GetByID(id uint) (*models.Group, error)
	GetAll() ([]models.Group, error)
	GroupsForNode(nodeID uint) ([]models.Group, error)
	// JoinsForNode lists the node's memberships; an empty visibility matches all.
	JoinsForNode(nodeID uint, visibility string) ([]models.NodeHasGroup, error)
	Attach(join *models.NodeHasGroup) error
	Detach(nodeID, groupID uint) error
	SetVisibility(nodeID uint, visibility string) (int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

func (r *groupRepository) GetByName(name string) (*models.Group, error) {
	var group models.Group
	err := r.db.Where("name = ?", name).First(&group).Error
	return &group, err
}

func (r *groupRepository) GetByID(id uint) (*models.Group, error) {
	var group models.Group
	err := r.db.First(&group, id).Error
	return &group, err
}

func (r *groupRepository) GetAll() ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Order("name asc").Find(&groups).Error
	return groups, err
}

func (r *groupRepository) GroupsForNode(nodeID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Joins("JOIN node_has_groups ON node_has_groups.group_id = access_groups.id").
		Where("node_has_groups.node_id = ?", nodeID).
		Order("access_groups.name asc").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepository) JoinsForNode(nodeID uint, visibility string) ([]models.NodeHasGroup, error) {
	var joins []models.NodeHasGroup
	query := r.db.Preload("Group").Where("node_id = ?", nodeID)
	if visibility != "" {
		query = query.Where("visibility = ?", visibility)
	}
	err := query.Order("id asc").Find(&joins).Error
	return joins, err
}

// Attach adds the membership, or updates its visibility when it already exists.
func (r *groupRepository) Attach(join *models.NodeHasGroup) error {
	return r.db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "node_id"}, {Name: "group_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"visibility", "updated_at"}),
	}).Create(join).Error
}

func (r *groupRepository) Detach(nodeID, groupID uint) error {
	return r.db.Where("node_id = ? AND group_id = ?", nodeID, groupID).
		Delete(&models.NodeHasGroup{}).Error
}

func (r *groupRepository) SetVisibility(nodeID uint, visibility string) (int64, error) {
	res := r.db.Model(&models.NodeHasGroup{}).
		Where("node_id = ?", nodeID).
		Update("visibility", visibility)
	return res.RowsAffected, res.Error
}
