package services

import (
	"fmt"
	"testing"

	"content-qa-cms/models"
	"content-qa-cms/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSaveWithChangeSetFirstSave(t *testing.T) {
	f := newFixture(t)
	rec := f.article(t, datatypes.JSONMap{"a": "x"})
	item := rec.Item()

	require.NotZero(t, item.ID)
	require.NotNil(t, item.NodeID)
	require.NotNil(t, item.QaStateID)
	assert.Empty(t, item.Errors)

	state := rec.QaState()
	assert.Equal(t, models.QaStatusDraft, state.Status)
	assert.Equal(t, 100, state.DraftValidationProgress)
	assert.Equal(t, 50, state.ReviewableValidationProgress)
	assert.Equal(t, 33, state.PublishableValidationProgress)
	assert.Equal(t, 0, state.TranslationProgress["de"])

	changesets, err := f.repos.Changesets.ListByNode(*item.NodeID)
	require.NoError(t, err)
	require.Len(t, changesets, 1)
	assert.Len(t, changesets[0].ContentsSHA256, 64)

	contents, err := changesets[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"draft_validation_progress":       float64(0),
		"reviewable_validation_progress":  float64(0),
		"publishable_validation_progress": float64(0),
	}, contents.Diff)
	assert.Equal(t, "draft", contents.After["status"])

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, changesets[0].ID, f.publisher.events[0].ChangesetID)
	assert.Equal(t, item.ID, f.publisher.events[0].ItemID)
	assert.Contains(t, f.logs.String(), "changeset saved")
}

func TestSaveWithChangeSetDiffIsSetDifference(t *testing.T) {
	f := newFixture(t)
	created := f.article(t, datatypes.JSONMap{"a": "x"})

	rec := f.reload(t, created.Item().ID).(QaTrackable)
	item := rec.Item()
	item.Fields["b"] = "y"
	item.Fields["a_de"] = "x auf Deutsch"
	item.Scenario = rules.StatusStepScenario(rules.StatusReviewable, "1")
	require.True(t, f.qa.SaveWithChangeSet(f.ctx, rec, ptr(uint(9))), item.Errors)

	changesets, err := f.repos.Changesets.ListByNode(*item.NodeID)
	require.NoError(t, err)
	require.Len(t, changesets, 2)
	require.NotNil(t, changesets[0].UserID)
	assert.Equal(t, uint(9), *changesets[0].UserID)

	contents, err := changesets[0].Decode()
	require.NoError(t, err)

	want := map[string]any{}
	for key, before := range contents.Before {
		if after, ok := contents.After[key]; !ok || fmt.Sprint(before) != fmt.Sprint(after) {
			want[key] = before
		}
	}
	assert.Equal(t, want, contents.Diff)
	assert.Equal(t, map[string]any{
		"reviewable_validation_progress":        float64(50),
		"publishable_validation_progress":       float64(33),
		"translate_into_de_validation_progress": float64(0),
	}, contents.Diff)
}

func TestSaveWithChangeSetValidationFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	created := f.article(t, datatypes.JSONMap{"a": "x"})
	id := created.Item().ID
	storedBefore := f.reload(t, id).Item().QaState.Attributes()

	rec := f.reload(t, id).(QaTrackable)
	item := rec.Item()
	item.Fields["a"] = "changed"
	item.Scenario = rules.StatusStepScenario(rules.StatusReviewable, "1")

	assert.False(t, f.qa.SaveWithChangeSet(f.ctx, rec, nil))
	assert.Equal(t, []string{"B cannot be blank."}, item.Errors["b"])
	assert.Contains(t, item.Errors.First("id"), "could not save Article #")

	assert.EqualValues(t, 1, f.count(t, &models.Changeset{}))
	stored := f.reload(t, id)
	assert.Equal(t, "x", stored.Item().Fields["a"])
	assert.Equal(t, storedBefore, stored.Item().QaState.Attributes())
	assert.Contains(t, f.logs.String(), "save with changeset rolled back")
	assert.Len(t, f.publisher.events, 1)
}

func TestSaveWithChangeSetPersistenceFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	created := f.article(t, datatypes.JSONMap{"a": "x"})
	id := created.Item().ID
	storedBefore := f.reload(t, id).Item().QaState.Attributes()

	failOn(t, f.db, "update", "items")

	rec := f.reload(t, id).(QaTrackable)
	item := rec.Item()
	item.Fields["b"] = "y"
	item.Scenario = rules.StepScenario("1")

	assert.False(t, f.qa.SaveWithChangeSet(f.ctx, rec, nil))
	assert.Contains(t, item.Errors.First("id"), "disk full")

	assert.EqualValues(t, 1, f.count(t, &models.Changeset{}))
	stored := f.reload(t, id)
	assert.Nil(t, stored.Item().Fields["b"])
	assert.Equal(t, storedBefore, stored.Item().QaState.Attributes())
}

func TestSaveWithChangeSetFailedCreateLeavesNothing(t *testing.T) {
	f := newFixture(t)
	failOn(t, f.db, "create", "items")

	item := &models.Item{Type: "Article", AuthorID: 1, Fields: datatypes.JSONMap{"a": "x"}}
	rec, err := f.qa.Bind(item)
	require.NoError(t, err)

	assert.False(t, f.qa.SaveWithChangeSet(f.ctx, rec.(QaTrackable), nil))
	assert.Zero(t, item.ID)
	assert.Nil(t, item.NodeID)
	assert.Nil(t, item.QaStateID)
	assert.Contains(t, item.Errors.First("id"), "could not save new Article")

	assert.Zero(t, f.count(t, &models.QaState{}))
	assert.Zero(t, f.count(t, &models.Node{}))
	assert.Zero(t, f.count(t, &models.Changeset{}))
}

func TestSaveAppropriatelyDispatchesOnCapability(t *testing.T) {
	f := newFixture(t)

	media := &models.Item{Type: "Media", AuthorID: 1, Fields: datatypes.JSONMap{"file_name": "cat.png"}}
	rec, err := f.qa.Bind(media)
	require.NoError(t, err)
	_, tracked := rec.(QaTrackable)
	require.False(t, tracked)

	require.True(t, f.qa.SaveAppropriately(f.ctx, rec, nil))
	assert.NotZero(t, media.ID)
	assert.Nil(t, media.QaStateID)
	assert.Zero(t, f.count(t, &models.Changeset{}))

	article := &models.Item{Type: "Article", AuthorID: 1, Fields: datatypes.JSONMap{"a": "x"}}
	rec, err = f.qa.Bind(article)
	require.NoError(t, err)
	require.True(t, f.qa.SaveAppropriately(f.ctx, rec, nil))
	assert.NotNil(t, article.QaStateID)
	assert.EqualValues(t, 1, f.count(t, &models.Changeset{}))
}

func TestBindUnknownType(t *testing.T) {
	f := newFixture(t)
	_, err := f.qa.Bind(&models.Item{Type: "Video"})
	assert.IsType(t, models.ErrorBadRequest{}, err)
}

func TestChangeStatus(t *testing.T) {
	f := newFixture(t)
	id := f.article(t, datatypes.JSONMap{"a": "x"}).Item().ID

	err := f.qa.ChangeStatus(f.ctx, id, "reviewable")
	var denied *models.TransitionDenied
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, models.QaStatusDraft, denied.From)
	assert.Equal(t, models.QaStatusReviewable, denied.To)
	assert.Equal(t, "Reviewing not marked as allowed", denied.Reason)
	assert.Equal(t, models.QaStatusDraft, f.reload(t, id).Item().QaState.Status)

	require.NoError(t, f.qa.SetPermissions(f.ctx, id, ptr(true), nil))
	require.NoError(t, f.qa.ChangeStatus(f.ctx, id, "reviewable"))
	assert.Equal(t, models.QaStatusReviewable, f.reload(t, id).Item().QaState.Status)

	err = f.qa.ChangeStatus(f.ctx, id, "publishable")
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "Publishing not marked as allowed", denied.Reason)

	// draft and published carry no permission flag
	require.NoError(t, f.qa.ChangeStatus(f.ctx, id, "public"))
	assert.Equal(t, models.QaStatusPublished, f.reload(t, id).Item().QaState.Status)
	require.NoError(t, f.qa.ChangeStatus(f.ctx, id, "draft"))

	assert.IsType(t, models.ErrorBadRequest{}, f.qa.ChangeStatus(f.ctx, id, "archived"))
	assert.IsType(t, models.ErrorNotFound{}, f.qa.ChangeStatus(f.ctx, id+100, "draft"))
}

func TestChangeStatusOnUntrackedType(t *testing.T) {
	f := newFixture(t)
	media := &models.Item{Type: "Media", AuthorID: 1}
	rec, err := f.qa.Bind(media)
	require.NoError(t, err)
	require.True(t, f.qa.SaveAppropriately(f.ctx, rec, nil))

	err = f.qa.ChangeStatus(f.ctx, media.ID, "draft")
	var missing *models.MissingAttribute
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Media does not have an attribute 'media_qa_state_id'", missing.Error())
}

func TestSetPermissionsKeepsUnsetFlags(t *testing.T) {
	f := newFixture(t)
	id := f.article(t, datatypes.JSONMap{"a": "x"}).Item().ID

	require.NoError(t, f.qa.SetPermissions(f.ctx, id, ptr(true), ptr(true)))
	require.NoError(t, f.qa.SetPermissions(f.ctx, id, nil, ptr(false)))

	state := f.reload(t, id).Item().QaState
	assert.True(t, state.AllowReview)
	assert.False(t, state.AllowPublish)
}

func TestPublishabilityPredicates(t *testing.T) {
	f := newFixture(t)
	rec := f.article(t, datatypes.JSONMap{"a": "x", "b": "y", "c": "z"})

	// valid for publishable but in no group
	assert.Empty(t, f.qa.InvalidFields(rec, rules.StatusScenario(rules.StatusPublishable)))
	ok, err := f.qa.IsPublishable(f.ctx, rec)
	require.NoError(t, err)
	assert.False(t, ok)

	group, err := f.groups.CreateGroup(models.CreateGroupRequest{Name: "editors"})
	require.NoError(t, err)
	_, err = f.groups.AttachItem(f.ctx, rec.Item().ID, models.AttachGroupRequest{GroupID: group.ID})
	require.NoError(t, err)

	belongs, err := f.qa.BelongsToGroup(f.ctx, rec, "editors")
	require.NoError(t, err)
	assert.True(t, belongs)
	belongs, err = f.qa.BelongsToGroup(f.ctx, rec, "public")
	require.NoError(t, err)
	assert.False(t, belongs)

	ok, err = f.qa.IsPublishable(f.ctx, rec)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.qa.IsUnpublishable(f.ctx, rec)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.qa.Publish(f.ctx, rec.Item().ID))
	published := f.reload(t, rec.Item().ID)
	assert.Equal(t, models.QaStatusPublished, published.Item().QaState.Status)

	ok, err = f.qa.IsPublished(f.ctx, published)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.qa.IsPublishable(f.ctx, published)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.qa.IsUnpublishable(f.ctx, published)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.IsType(t, models.ErrorConflict{}, f.qa.Publish(f.ctx, rec.Item().ID))

	require.NoError(t, f.qa.Unpublish(f.ctx, rec.Item().ID))
	unpublished := f.reload(t, rec.Item().ID)
	assert.Equal(t, models.QaStatusPublishable, unpublished.Item().QaState.Status)
	ok, err = f.qa.IsVisible(f.ctx, unpublished)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUntrackedItemIsNeverPublishable(t *testing.T) {
	f := newFixture(t)
	media := &models.Item{Type: "Media", AuthorID: 1, Fields: datatypes.JSONMap{"file_name": "cat.png"}}
	rec, err := f.qa.Bind(media)
	require.NoError(t, err)
	require.True(t, f.qa.SaveAppropriately(f.ctx, rec, nil))

	group, err := f.groups.CreateGroup(models.CreateGroupRequest{Name: "public"})
	require.NoError(t, err)
	_, err = f.groups.AttachItem(f.ctx, media.ID, models.AttachGroupRequest{GroupID: group.ID})
	require.NoError(t, err)

	rec = f.reload(t, media.ID)
	ok, err := f.qa.IsPublishable(f.ctx, rec)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.IsType(t, models.ErrorConflict{}, f.qa.Publish(f.ctx, media.ID))
	ok, err = f.qa.IsPublished(f.ctx, f.reload(t, media.ID))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsPublishableFalseWhenInvalid(t *testing.T) {
	f := newFixture(t)
	rec := f.article(t, datatypes.JSONMap{"a": "x"})

	group, err := f.groups.CreateGroup(models.CreateGroupRequest{Name: "editors"})
	require.NoError(t, err)
	_, err = f.groups.AttachItem(f.ctx, rec.Item().ID, models.AttachGroupRequest{GroupID: group.ID})
	require.NoError(t, err)

	ok, err := f.qa.IsPublishable(f.ctx, rec)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"b", "c"}, f.qa.InvalidFields(rec, rules.StatusScenario(rules.StatusPublishable)))
}

func TestMakeNodeHasGroupVisibility(t *testing.T) {
	f := newFixture(t)

	orphan, err := f.qa.Bind(&models.Item{Type: "Article"})
	require.NoError(t, err)
	n, err := f.qa.MakeNodeHasGroupVisible(f.ctx, orphan)
	require.NoError(t, err)
	assert.Zero(t, n)

	rec := f.article(t, datatypes.JSONMap{"a": "x"})
	for _, name := range []string{"editors", "public"} {
		group, err := f.groups.CreateGroup(models.CreateGroupRequest{Name: name})
		require.NoError(t, err)
		_, err = f.groups.AttachItem(f.ctx, rec.Item().ID, models.AttachGroupRequest{GroupID: group.ID})
		require.NoError(t, err)
	}

	n, err = f.qa.MakeNodeHasGroupVisible(f.ctx, rec)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	visible, err := f.qa.IsVisible(f.ctx, rec)
	require.NoError(t, err)
	assert.True(t, visible)

	n, err = f.qa.MakeNodeHasGroupHidden(f.ctx, rec)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	visible, err = f.qa.IsVisible(f.ctx, rec)
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestTranslationProgress(t *testing.T) {
	f := newFixture(t)

	// nothing to translate yet
	empty := f.article(t, datatypes.JSONMap{})
	assert.Equal(t, 0, empty.QaState().TranslationProgress["de"])
	assert.Equal(t, 0, f.qa.ValidationProgress(empty, rules.TranslateScenario("de")))

	done := f.article(t, datatypes.JSONMap{"a": "x", "a_de": "x"})
	assert.Equal(t, 100, done.QaState().TranslationProgress["de"])
}

func TestRefreshQaState(t *testing.T) {
	f := newFixture(t)
	id := f.article(t, datatypes.JSONMap{"a": "x"}).Item().ID

	require.NoError(t, f.db.Model(&models.QaState{}).Where("1 = 1").Update("draft_validation_progress", 0).Error)

	rec := f.reload(t, id).(QaTrackable)
	require.NoError(t, f.qa.RefreshQaState(f.ctx, rec))
	assert.Equal(t, 100, f.reload(t, id).Item().QaState.DraftValidationProgress)
}

func TestValidationMessages(t *testing.T) {
	f := newFixture(t)
	rec := f.article(t, datatypes.JSONMap{})

	msgs := f.qa.ValidationMessages(rec, rules.StatusStepScenario(rules.StatusReviewable, "1"))
	assert.Equal(t, models.FieldErrors{
		"a": {"A cannot be blank."},
		"b": {"B cannot be blank."},
	}, msgs)
	assert.Nil(t, f.qa.ValidationMessages(rec, rules.Scenario{}))

	// a session keeps its results until a new one is started
	scenario := rules.StatusStepScenario(rules.StatusReviewable, "1")
	session := f.qa.Session(rec)
	assert.Equal(t, []string{"a", "b"}, session.InvalidFields(scenario))
	rec.Item().Fields["a"] = "x"
	assert.Equal(t, msgs, f.qa.SessionMessages(session, scenario))
	assert.Equal(t, 0, session.Progress(scenario))
	assert.Equal(t, models.FieldErrors{"b": {"B cannot be blank."}}, f.qa.ValidationMessages(rec, scenario))
}
