package models

import "time"

const (
	VisibilityVisible = "visible"
	VisibilityHidden  = "hidden"
)

// Node groups an item's permissions and changesets.
type Node struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	NodeHasGroups []NodeHasGroup `json:"node_has_groups,omitempty" gorm:"foreignKey:NodeID"`
	CreatedAt     time.Time      `json:"created_at"`
}

type Group struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GROUPS is a keyword in both postgres and sqlite.
func (Group) TableName() string { return "access_groups" }

// NodeHasGroup ties a node to a group. Visibility decides whether the
// group's members see the node.
type NodeHasGroup struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	NodeID     uint      `json:"node_id" gorm:"not null;uniqueIndex:idx_node_group"`
	GroupID    uint      `json:"group_id" gorm:"not null;uniqueIndex:idx_node_group"`
	Group      *Group    `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	Visibility string    `json:"visibility" gorm:"not null;default:'hidden'"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
