package models

import (
	"errors"
	"testing"

	"content-qa-cms/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestParseQaStatus(t *testing.T) {
	for in, want := range map[string]QaStatus{
		"draft":       QaStatusDraft,
		"Reviewable":  QaStatusReviewable,
		"publishable": QaStatusPublishable,
		"published":   QaStatusPublished,
		" public ":    QaStatusPublished,
	} {
		got, err := ParseQaStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseQaStatus("archived")
	assert.Error(t, err)

	_, ok := QaStatusPublished.Tier()
	assert.False(t, ok)
	tier, ok := QaStatusReviewable.Tier()
	assert.True(t, ok)
	assert.Equal(t, rules.StatusReviewable, tier)
}

func TestItemValuesAndAssign(t *testing.T) {
	item := &Item{Type: "Article", Fields: datatypes.JSONMap{"title": "Hello", "id": "spoofed"}}
	assert.NotContains(t, item.Values(), "id")

	item.ID = 4
	values := item.Values()
	assert.Equal(t, uint(4), values["id"])
	assert.Equal(t, "Hello", values["title"])
	assert.Equal(t, "Article #4", item.Label())
	assert.Equal(t, "new Article", (&Item{Type: "Article"}).Label())

	values["title"] = "changed"
	assert.Equal(t, "Hello", item.Fields["title"])

	item.Assign(map[string]any{"title": "New", "body": "Text", "secret": "x"}, []string{"title", "body"})
	assert.Equal(t, "New", item.Fields["title"])
	assert.Equal(t, "Text", item.Fields["body"])
	assert.NotContains(t, item.Fields, "secret")
}

func TestItemErrors(t *testing.T) {
	item := &Item{}
	assert.False(t, item.HasErrors())

	item.AddError("id", "first")
	item.AddError("id", "second")
	assert.True(t, item.HasErrors())
	assert.Equal(t, "first", item.Errors.First("id"))
	assert.Equal(t, "", item.Errors.First("title"))

	item.ClearErrors()
	assert.False(t, item.HasErrors())
}

func TestQaStateAttributes(t *testing.T) {
	state := NewQaState()
	state.ID = 2
	state.TranslationProgress["de"] = 50

	attrs := state.Attributes()
	assert.Equal(t, "draft", attrs["status"])
	assert.Equal(t, 50, attrs["translate_into_de_validation_progress"])
	assert.NotContains(t, attrs, "updated_at")
}

func TestDiffAttributes(t *testing.T) {
	before := map[string]any{"status": "draft", "progress": float64(50), "allow_review": false, "gone": 1}
	after := map[string]any{"status": "draft", "progress": 50, "allow_review": true, "new": 2}

	assert.Equal(t, map[string]any{"allow_review": false, "gone": 1}, DiffAttributes(before, after))
	assert.Empty(t, DiffAttributes(after, after))
}

func TestNewChangeset(t *testing.T) {
	user := uint(3)
	contents := ChangesetContents{
		Before: map[string]any{"status": "draft"},
		After:  map[string]any{"status": "reviewable"},
		Diff:   map[string]any{"status": "draft"},
	}

	cs, err := NewChangeset(contents, &user, 9)
	require.NoError(t, err)
	assert.Len(t, cs.ContentsSHA256, 64)
	assert.Equal(t, uint(9), cs.NodeID)

	decoded, err := cs.Decode()
	require.NoError(t, err)
	assert.Equal(t, contents, decoded)
}

func TestErrors(t *testing.T) {
	cause := errors.New("disk full")
	failure := &SaveFailure{Model: "Article #1", Err: cause}
	assert.Equal(t, "could not save Article #1: disk full", failure.Error())
	assert.ErrorIs(t, failure, cause)

	failure = &SaveFailure{Model: "Article #1", Errors: FieldErrors{"title": {"Title cannot be blank."}, "body": {"Body cannot be blank."}}}
	assert.Equal(t, "could not save Article #1: Body cannot be blank. Title cannot be blank.", failure.Error())

	denied := &TransitionDenied{From: QaStatusDraft, To: QaStatusReviewable, Reason: "Reviewing not marked as allowed"}
	assert.Contains(t, denied.Error(), "draft to reviewable")

	missing := &MissingAttribute{Model: "Page", Attribute: "page_qa_state_id"}
	assert.Equal(t, "Page does not have an attribute 'page_qa_state_id'", missing.Error())
}
