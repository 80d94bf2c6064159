package rules

import (
	"reflect"
	"strings"

	"gopkg.in/go-playground/validator.v9"
)

// Values is an immutable snapshot of an item's field values.
type Values map[string]any

// Snapshot is everything a validation pass reads.
type Snapshot struct {
	Values       Values
	AllowReview  bool
	AllowPublish bool
}

// Failure is one field that did not pass a rule.
type Failure struct {
	Field string
	Kind  RuleKind
}

// RecursiveFunc reports whether a related-objects value is completely
// translated into language.
type RecursiveFunc func(value any, language string) bool

// TranslationCompleter is implemented by related objects that know their
// own translation state.
type TranslationCompleter interface {
	TranslationComplete(language string) bool
}

var presence = validator.New()

// IsEmpty reports whether value counts as blank: nil, a blank string or an
// empty collection. Numbers and booleans are never blank.
func IsEmpty(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return presence.Var(strings.TrimSpace(rv.String()), "required") != nil
	case reflect.Slice, reflect.Map, reflect.Array:
		return presence.Var(value, "min=1") != nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmpty(rv.Elem().Interface())
	}
	return false
}

// Validator checks snapshots against derived rules without touching the item.
type Validator struct {
	recursive map[string]RecursiveFunc
}

func NewValidator() *Validator {
	return &Validator{recursive: make(map[string]RecursiveFunc)}
}

// RegisterRecursive overrides how the related objects of field are checked.
func (v *Validator) RegisterRecursive(field string, fn RecursiveFunc) {
	v.recursive[field] = fn
}

// Check returns the failing fields of scenario, one failure per field, in rule order.
func (v *Validator) Check(rules []Rule, snap Snapshot, scenario Scenario) []Failure {
	var failures []Failure
	failed := make(map[string]bool)
	for _, r := range rules {
		if !r.AppliesTo(scenario) {
			continue
		}
		for _, field := range r.Fields {
			if failed[field] || v.passes(r.Kind, field, snap, scenario) {
				continue
			}
			failed[field] = true
			failures = append(failures, Failure{Field: field, Kind: r.Kind})
		}
	}
	return failures
}

// Validate returns the names of the failing fields of scenario.
func (v *Validator) Validate(rules []Rule, snap Snapshot, scenario Scenario) []string {
	failures := v.Check(rules, snap, scenario)
	if len(failures) == 0 {
		return nil
	}
	fields := make([]string, len(failures))
	for i, f := range failures {
		fields[i] = f.Field
	}
	return fields
}

func (v *Validator) passes(kind RuleKind, field string, snap Snapshot, scenario Scenario) bool {
	switch kind {
	case RuleSafe:
		return true
	case RuleRequired:
		return !IsEmpty(snap.Values[field])
	case RuleCompare:
		return false
	case RuleRecursive:
		fn, ok := v.recursive[field]
		if !ok {
			fn = relatedTranslated
		}
		return fn(snap.Values[field], scenario.Language)
	case RuleAllowReview:
		return snap.AllowReview
	case RuleAllowPublish:
		return snap.AllowPublish
	}
	return false
}

// relatedTranslated checks a collection of related objects. Each object is
// either a TranslationCompleter or a map whose non-blank string fields have
// a non-blank counterpart in translations[language].
func relatedTranslated(value any, language string) bool {
	if IsEmpty(value) {
		return false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return objectTranslated(value, language)
	}
	for i := 0; i < rv.Len(); i++ {
		if !objectTranslated(rv.Index(i).Interface(), language) {
			return false
		}
	}
	return true
}

func objectTranslated(obj any, language string) bool {
	if c, ok := obj.(TranslationCompleter); ok {
		return c.TranslationComplete(language)
	}
	fields, ok := obj.(map[string]any)
	if !ok {
		return false
	}
	translations, _ := fields["translations"].(map[string]any)
	translated, _ := translations[language].(map[string]any)
	for key, val := range fields {
		if key == IdentityField || key == "translations" {
			continue
		}
		if _, isString := val.(string); !isString || IsEmpty(val) {
			continue
		}
		if IsEmpty(translated[key]) {
			return false
		}
	}
	return true
}
