package i18n

import (
	"testing"

	"content-qa-cms/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/go-playground/validator.v9"
)

func TestTranslatorT(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	assert.Equal(t, "Title cannot be blank.", tr.T("en", KeyRequired, "Title"))
	assert.Equal(t, "Title darf nicht leer sein.", tr.T("de", KeyRequired, "Title"))
	assert.Equal(t, "Reviewing not marked as allowed", tr.T("fi", KeyAllowReview))
	assert.Equal(t, "unknown_key", tr.T("en", "unknown_key"))
}

func TestTranslatorFailure(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	assert.Equal(t, "Body cannot be blank.",
		tr.Failure("en", rules.Failure{Field: "body", Kind: rules.RuleRequired}, rules.Scenario{}))
	assert.Equal(t, "Publishing not marked as allowed",
		tr.Failure("en", rules.Failure{Field: "status", Kind: rules.RuleAllowPublish}, rules.Scenario{}))
	assert.Equal(t, "Sections is not completely translated into sv.",
		tr.Failure("en", rules.Failure{Field: "sections", Kind: rules.RuleRecursive}, rules.TranslateScenario("sv")))
}

func TestTranslatorValidator(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	validate, trans, err := tr.Validator()
	require.NoError(t, err)

	type request struct {
		Name string `validate:"required"`
	}
	err = validate.Struct(request{})
	require.Error(t, err)

	msgs := err.(validator.ValidationErrors).Translate(trans)
	assert.Equal(t, "Name is a required field", msgs["request.Name"])

	// catalogue messages survive the validator registration
	assert.Equal(t, "Title cannot be blank.", tr.T("en", KeyRequired, "Title"))

	again, _, err := tr.Validator()
	require.NoError(t, err)
	assert.Same(t, validate, again)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Thumbnail Media", Label("thumbnail_media_id"))
	assert.Equal(t, "Title De", Label("title_de"))
	assert.Equal(t, "", Label(""))
}
