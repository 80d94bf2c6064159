package services

import (
	"context"
	"errors"
	"fmt"

	"content-qa-cms/models"
	"content-qa-cms/repositories"

	"gorm.io/gorm"
)

type GroupService interface {
	CreateGroup(req models.CreateGroupRequest) (*models.Group, error)
	GetGroups() ([]models.Group, error)
	GetGroup(id uint) (*models.Group, error)
	AttachItem(ctx context.Context, itemID uint, req models.AttachGroupRequest) ([]models.NodeHasGroup, error)
	DetachItem(ctx context.Context, itemID, groupID uint) error
	GetItemGroups(ctx context.Context, itemID uint) ([]models.NodeHasGroup, error)
}

type groupService struct {
	groupRepo repositories.GroupRepository
	tx        repositories.Transactor
}

func NewGroupService(groupRepo repositories.GroupRepository, tx repositories.Transactor) GroupService {
	return &groupService{
		groupRepo: groupRepo,
		tx:        tx,
	}
}

func (s *groupService) CreateGroup(req models.CreateGroupRequest) (*models.Group, error) {
	// Check if group already exists
	_, err := s.groupRepo.GetByName(req.Name)
	if err == nil {
		return nil, models.ErrorConflict{Message: fmt.Sprintf("group %q already exists", req.Name)}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	group := &models.Group{Name: req.Name}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}

	return group, nil
}

func (s *groupService) GetGroups() ([]models.Group, error) {
	return s.groupRepo.GetAll()
}

func (s *groupService) GetGroup(id uint) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrorNotFound{Message: fmt.Sprintf("group %d not found", id)}
	}
	return group, err
}

// AttachItem adds the item's node to a group, creating the node for items
// that never went through a tracked save.
func (s *groupService) AttachItem(ctx context.Context, itemID uint, req models.AttachGroupRequest) ([]models.NodeHasGroup, error) {
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityHidden
	}

	var nodeID uint
	err := s.tx.WithinTransaction(ctx, func(repos repositories.Repositories) error {
		item, err := findItem(repos, itemID)
		if err != nil {
			return err
		}
		if _, err := repos.Groups.GetByID(req.GroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrorNotFound{Message: fmt.Sprintf("group %d not found", req.GroupID)}
			}
			return err
		}

		if item.NodeID == nil {
			node := &models.Node{}
			if err := repos.Nodes.Create(node); err != nil {
				return err
			}
			item.NodeID = &node.ID
			if err := repos.Items.Save(item); err != nil {
				return err
			}
		}
		nodeID = *item.NodeID

		return repos.Groups.Attach(&models.NodeHasGroup{NodeID: nodeID, GroupID: req.GroupID, Visibility: visibility})
	})
	if err != nil {
		return nil, err
	}
	return s.tx.WithContext(ctx).Groups.JoinsForNode(nodeID, "")
}

func (s *groupService) DetachItem(ctx context.Context, itemID, groupID uint) error {
	repos := s.tx.WithContext(ctx)
	item, err := findItem(repos, itemID)
	if err != nil {
		return err
	}
	if item.NodeID == nil {
		return nil
	}
	return repos.Groups.Detach(*item.NodeID, groupID)
}

func (s *groupService) GetItemGroups(ctx context.Context, itemID uint) ([]models.NodeHasGroup, error) {
	repos := s.tx.WithContext(ctx)
	item, err := findItem(repos, itemID)
	if err != nil {
		return nil, err
	}
	if item.NodeID == nil {
		return []models.NodeHasGroup{}, nil
	}
	return repos.Groups.JoinsForNode(*item.NodeID, "")
}

func findItem(repos repositories.Repositories, id uint) (*models.Item, error) {
	item, err := repos.Items.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrorNotFound{Message: fmt.Sprintf("item %d not found", id)}
	}
	return item, err
}
