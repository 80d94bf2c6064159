package rules

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// IdentityField is required by every tier that has no explicit requirements.
const IdentityField = "id"

// FlowStep groups the fields entered together in one workflow step.
type FlowStep struct {
	ID     string   `yaml:"id" json:"id"`
	Fields []string `yaml:"fields" json:"fields"`
}

// StatusRequirements lists, per tier, the fields that must be non-empty to reach it.
type StatusRequirements struct {
	Draft       []string `yaml:"draft" json:"draft"`
	Reviewable  []string `yaml:"reviewable" json:"reviewable"`
	Publishable []string `yaml:"publishable" json:"publishable"`
}

// For returns the fields listed for a tier.
func (r StatusRequirements) For(status Status) []string {
	switch status {
	case StatusDraft:
		return r.Draft
	case StatusReviewable:
		return r.Reviewable
	case StatusPublishable:
		return r.Publishable
	}
	return nil
}

// withDefaults makes every tier reachable by requiring the identity field
// for tiers without requirements.
func (r StatusRequirements) withDefaults() StatusRequirements {
	if len(r.Draft) == 0 {
		r.Draft = []string{IdentityField}
	}
	if len(r.Reviewable) == 0 {
		r.Reviewable = []string{IdentityField}
	}
	if len(r.Publishable) == 0 {
		r.Publishable = []string{IdentityField}
	}
	return r
}

// minimalTiers returns the tiers at which field is mandatory. Tiers are
// cumulative, so the lowest tier naming the field decides.
func (r StatusRequirements) minimalTiers(field string) []Status {
	switch {
	case slices.Contains(r.Draft, field):
		return []Status{StatusDraft, StatusReviewable, StatusPublishable}
	case slices.Contains(r.Reviewable, field):
		return []Status{StatusReviewable, StatusPublishable}
	case slices.Contains(r.Publishable, field):
		return []Status{StatusPublishable}
	}
	return nil
}

// TranslationAttribute maps a translatable field to its source-language field.
// Recursive attributes hold related objects that are validated on their own.
type TranslationAttribute struct {
	Field     string `yaml:"field" json:"field"`
	Source    string `yaml:"source,omitempty" json:"source,omitempty"`
	Recursive bool   `yaml:"recursive,omitempty" json:"recursive,omitempty"`
}

func (a TranslationAttribute) SourceField() string {
	if a.Source != "" {
		return a.Source
	}
	return a.Field
}

// LanguageField is the field holding the translation into language.
func (a TranslationAttribute) LanguageField(language string) string {
	return a.Field + "_" + language
}

// Definition is the static configuration of an item type.
type Definition struct {
	Name               string                 `yaml:"name" json:"name"`
	Preparable         bool                   `yaml:"preparable" json:"preparable"`
	FlowSteps          []FlowStep             `yaml:"flow_steps" json:"flow_steps"`
	StatusRequirements StatusRequirements     `yaml:"status_requirements" json:"status_requirements"`
	Translatable       []TranslationAttribute `yaml:"translatable" json:"translatable"`
	FirstFlowStep      string                 `yaml:"first_flow_step,omitempty" json:"first_flow_step,omitempty"`
}

// Validate reports configuration mistakes. They are programmer errors and
// are surfaced when definitions are loaded.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("item type name is required")
	}
	seen := make(map[string]bool, len(d.FlowSteps))
	for _, step := range d.FlowSteps {
		if strings.TrimSpace(step.ID) == "" {
			return fmt.Errorf("%s: flow step id is required", d.Name)
		}
		if seen[step.ID] {
			return fmt.Errorf("%s: duplicate flow step %q", d.Name, step.ID)
		}
		seen[step.ID] = true
	}
	if d.FirstFlowStep != "" && !seen[d.FirstFlowStep] {
		return fmt.Errorf("%s: first flow step %q is not a flow step", d.Name, d.FirstFlowStep)
	}
	for _, attr := range d.Translatable {
		if strings.TrimSpace(attr.Field) == "" {
			return fmt.Errorf("%s: translatable field name is required", d.Name)
		}
	}
	return nil
}

// Step returns the flow step with the given id.
func (d Definition) Step(id string) (FlowStep, bool) {
	for _, step := range d.FlowSteps {
		if step.ID == id {
			return step, true
		}
	}
	return FlowStep{}, false
}

// StepOf returns the id of the first step containing field.
func (d Definition) StepOf(field string) (string, bool) {
	for _, step := range d.FlowSteps {
		if slices.Contains(step.Fields, field) {
			return step.ID, true
		}
	}
	return "", false
}

// Fields returns every step field in step order.
func (d Definition) Fields() []string {
	var fields []string
	for _, step := range d.FlowSteps {
		fields = append(fields, step.Fields...)
	}
	return fields
}

// FirstFlowStep returns the configured first step, or the first declared one.
func FirstFlowStep(def Definition) string {
	if def.FirstFlowStep != "" {
		return def.FirstFlowStep
	}
	if len(def.FlowSteps) > 0 {
		return def.FlowSteps[0].ID
	}
	return ""
}

// FirstTranslationFlowStep returns the first step holding a currently
// translatable field. Falls back to FirstFlowStep.
func FirstTranslationFlowStep(def Definition, values Values) string {
	current := CurrentlyTranslatable(def, values)
	for _, step := range def.FlowSteps {
		for _, attr := range current {
			if slices.Contains(step.Fields, attr.SourceField()) {
				return step.ID
			}
		}
	}
	return FirstFlowStep(def)
}
