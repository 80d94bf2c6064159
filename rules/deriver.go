package rules

// Derive produces the validation rules of an item type. values is the
// current field snapshot; it only decides which fields are currently
// translatable. languages are the translation target languages.
//
// Derive is pure: the same inputs always yield the same rules.
func Derive(def Definition, languages []string, values Values) []Rule {
	var derived []Rule
	derived = append(derived, flowStepRules(def)...)
	if def.Preparable {
		derived = append(derived, statusRules(def.StatusRequirements)...)
	}
	derived = append(derived, translationRules(def, languages, values)...)
	return derived
}

func flowStepRules(def Definition) []Rule {
	// Only preparable items carry status requirements.
	var requirements StatusRequirements
	if def.Preparable {
		requirements = def.StatusRequirements
	}

	var derived []Rule
	for _, step := range def.FlowSteps {
		for _, field := range step.Fields {
			safeOn := make([]Scenario, 0, len(stepStatuses)+1)
			for _, status := range stepStatuses {
				safeOn = append(safeOn, StatusStepScenario(status, step.ID))
			}
			safeOn = append(safeOn, StepScenario(step.ID))
			derived = append(derived, Rule{Fields: []string{field}, Kind: RuleSafe, On: safeOn})

			// A field required at any tier is also required when its own step is saved alone.
			if tiers := requirements.minimalTiers(field); len(tiers) > 0 {
				on := make([]Scenario, 0, len(tiers)+1)
				for _, status := range tiers {
					on = append(on, StatusStepScenario(status, step.ID))
				}
				on = append(on, StepScenario(step.ID))
				derived = append(derived, Rule{Fields: []string{field}, Kind: RuleRequired, On: on})
			}

			derived = append(derived, Rule{
				Fields: []string{field},
				Kind:   RuleRequired,
				On:     []Scenario{TotalProgressScenario(step.ID)},
			})
		}
	}
	return derived
}

// statusRules apply on the plain status scenarios, so requirements on fields
// outside any step are honoured as well.
func statusRules(requirements StatusRequirements) []Rule {
	r := requirements.withDefaults()
	return []Rule{
		{
			Fields: r.Draft,
			Kind:   RuleRequired,
			On: []Scenario{
				StatusScenario(StatusDraft),
				StatusScenario(StatusReviewable),
				StatusScenario(StatusPublishable),
			},
		},
		{
			Fields: r.Reviewable,
			Kind:   RuleRequired,
			On:     []Scenario{StatusScenario(StatusReviewable), StatusScenario(StatusPublishable)},
		},
		{
			Fields: r.Publishable,
			Kind:   RuleRequired,
			On:     []Scenario{StatusScenario(StatusPublishable)},
		},
		{Fields: []string{"status"}, Kind: RuleAllowReview, On: []Scenario{TransitionScenario(StatusReviewable)}},
		{Fields: []string{"status"}, Kind: RuleAllowPublish, On: []Scenario{TransitionScenario(StatusPublishable)}},
	}
}

func translationRules(def Definition, languages []string, values Values) []Rule {
	if len(languages) == 0 {
		return nil
	}

	current := CurrentlyTranslatable(def, values)
	if len(current) == 0 {
		// Nothing to translate yet: progress is 0% for every language.
		on := make([]Scenario, 0, len(languages))
		for _, lang := range languages {
			on = append(on, TranslateScenario(lang))
		}
		return []Rule{{Fields: []string{IdentityField}, Kind: RuleCompare, On: on}}
	}

	var derived []Rule
	for _, attr := range current {
		step, inStep := def.StepOf(attr.SourceField())
		for _, lang := range languages {
			if attr.Recursive {
				derived = append(derived, Rule{
					Fields: []string{attr.Field},
					Kind:   RuleRecursive,
					On:     []Scenario{TranslateScenario(lang)},
				})
				continue
			}
			field := attr.LanguageField(lang)
			if inStep {
				derived = append(derived, Rule{
					Fields: []string{field},
					Kind:   RuleSafe,
					On:     []Scenario{TranslateStepScenario(lang, step)},
				})
			}
			derived = append(derived, Rule{
				Fields: []string{field},
				Kind:   RuleRequired,
				On:     []Scenario{TranslateScenario(lang)},
			})
		}
	}
	return derived
}

// CurrentlyTranslatable returns the translation attributes whose source
// field holds content.
func CurrentlyTranslatable(def Definition, values Values) []TranslationAttribute {
	var current []TranslationAttribute
	for _, attr := range def.Translatable {
		if !IsEmpty(values[attr.SourceField()]) {
			current = append(current, attr)
		}
	}
	return current
}
