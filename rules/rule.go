package rules

import "slices"

type RuleKind string

const (
	// RuleSafe marks a field as assignable without requiring it.
	RuleSafe     RuleKind = "safe"
	RuleRequired RuleKind = "required"
	// RuleCompare compares against a value no field can hold, so it never passes.
	RuleCompare      RuleKind = "compare"
	RuleRecursive    RuleKind = "recursive"
	RuleAllowReview  RuleKind = "allow_review"
	RuleAllowPublish RuleKind = "allow_publish"
)

// Rule activates one validator for some fields in a set of scenarios.
type Rule struct {
	Fields []string   `json:"fields"`
	Kind   RuleKind   `json:"kind"`
	On     []Scenario `json:"on"`
}

func (r Rule) AppliesTo(scenario Scenario) bool {
	if scenario.IsZero() {
		return false
	}
	return slices.Contains(r.On, scenario)
}

// Triple is one (field, validator, scenario) combination of a rule.
type Triple struct {
	Field    string
	Kind     RuleKind
	Scenario Scenario
}

// Flatten expands rules into triples, in rule order.
func Flatten(rules []Rule) []Triple {
	var triples []Triple
	for _, r := range rules {
		for _, field := range r.Fields {
			for _, s := range r.On {
				triples = append(triples, Triple{Field: field, Kind: r.Kind, Scenario: s})
			}
		}
	}
	return triples
}

// ScenarioAttributes returns the fields validated in scenario, excluding
// fields that are only marked safe.
func ScenarioAttributes(rules []Rule, scenario Scenario) []string {
	return collect(rules, scenario, func(r Rule) bool { return r.Kind != RuleSafe })
}

// SafeAttributes returns the fields that may be assigned in scenario.
func SafeAttributes(rules []Rule, scenario Scenario) []string {
	return collect(rules, scenario, func(Rule) bool { return true })
}

func collect(rules []Rule, scenario Scenario, keep func(Rule) bool) []string {
	var fields []string
	seen := make(map[string]bool)
	for _, r := range rules {
		if !keep(r) || !r.AppliesTo(scenario) {
			continue
		}
		for _, field := range r.Fields {
			if !seen[field] {
				seen[field] = true
				fields = append(fields, field)
			}
		}
	}
	return fields
}
