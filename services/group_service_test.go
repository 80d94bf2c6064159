package services

import (
	"testing"

	"content-qa-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroup(t *testing.T) {
	f := newFixture(t)

	group, err := f.groups.CreateGroup(models.CreateGroupRequest{Name: "editors"})
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	_, err = f.groups.CreateGroup(models.CreateGroupRequest{Name: "editors"})
	assert.IsType(t, models.ErrorConflict{}, err)

	found, err := f.groups.GetGroup(group.ID)
	require.NoError(t, err)
	assert.Equal(t, "editors", found.Name)

	_, err = f.groups.GetGroup(group.ID + 1)
	assert.IsType(t, models.ErrorNotFound{}, err)
}

func TestAttachItemCreatesNodeForUntrackedItems(t *testing.T) {
	f := newFixture(t)
	media, err := f.items.CreateItem(f.ctx, models.CreateItemRequest{Type: "Media"}, 1)
	require.NoError(t, err)
	require.Nil(t, media.Item.NodeID)

	group, err := f.groups.CreateGroup(models.CreateGroupRequest{Name: "public"})
	require.NoError(t, err)

	joins, err := f.groups.AttachItem(f.ctx, media.Item.ID, models.AttachGroupRequest{GroupID: group.ID, Visibility: models.VisibilityVisible})
	require.NoError(t, err)
	require.Len(t, joins, 1)
	assert.Equal(t, models.VisibilityVisible, joins[0].Visibility)
	assert.Equal(t, "public", joins[0].Group.Name)

	listed, err := f.groups.GetItemGroups(f.ctx, media.Item.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, f.groups.DetachItem(f.ctx, media.Item.ID, group.ID))
	listed, err = f.groups.GetItemGroups(f.ctx, media.Item.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAttachItemErrors(t *testing.T) {
	f := newFixture(t)
	article, err := f.items.CreateItem(f.ctx, models.CreateItemRequest{Type: "Article"}, 1)
	require.NoError(t, err)

	_, err = f.groups.AttachItem(f.ctx, article.Item.ID, models.AttachGroupRequest{GroupID: 42})
	assert.IsType(t, models.ErrorNotFound{}, err)

	_, err = f.groups.AttachItem(f.ctx, article.Item.ID+100, models.AttachGroupRequest{GroupID: 1})
	assert.IsType(t, models.ErrorNotFound{}, err)
}
