package rules

import (
	"fmt"
	"strings"
)

// Status is a QA tier a scenario can be scoped to.
type Status string

const (
	StatusTemporary   Status = "temporary"
	StatusDraft       Status = "draft"
	StatusReviewable  Status = "reviewable"
	StatusPublishable Status = "publishable"
)

// Tiers lists the statuses whose requirements are tracked as validation progress.
var Tiers = []Status{StatusDraft, StatusReviewable, StatusPublishable}

var stepStatuses = []Status{StatusTemporary, StatusDraft, StatusReviewable, StatusPublishable}

func (s Status) valid() bool {
	switch s {
	case StatusTemporary, StatusDraft, StatusReviewable, StatusPublishable:
		return true
	}
	return false
}

type ScenarioKind int

const (
	// KindStatus is a plain status scenario, or a status crossed with a step when Step is set.
	KindStatus ScenarioKind = iota + 1
	KindStep
	KindStepTotalProgress
	KindStatusTransition
	KindTranslate
	KindTranslateStep
)

// Scenario selects which rules are active. Two scenarios are the same
// validation context exactly when they compare equal.
type Scenario struct {
	Kind     ScenarioKind
	Status   Status
	Step     string
	Language string
}

func StatusScenario(status Status) Scenario {
	return Scenario{Kind: KindStatus, Status: status}
}

func StatusStepScenario(status Status, step string) Scenario {
	return Scenario{Kind: KindStatus, Status: status, Step: step}
}

func StepScenario(step string) Scenario {
	return Scenario{Kind: KindStep, Step: step}
}

func TotalProgressScenario(step string) Scenario {
	return Scenario{Kind: KindStepTotalProgress, Step: step}
}

func TransitionScenario(status Status) Scenario {
	return Scenario{Kind: KindStatusTransition, Status: status}
}

func TranslateScenario(language string) Scenario {
	return Scenario{Kind: KindTranslate, Language: language}
}

func TranslateStepScenario(language, step string) Scenario {
	return Scenario{Kind: KindTranslateStep, Language: language, Step: step}
}

// IsZero reports whether no scenario is set. No rule applies to the zero scenario.
func (s Scenario) IsZero() bool {
	return s == Scenario{}
}

// String renders the scenario name used in URLs, logs and CLI output.
func (s Scenario) String() string {
	switch s.Kind {
	case KindStatus:
		if s.Step != "" {
			return string(s.Status) + "-step_" + s.Step
		}
		return string(s.Status)
	case KindStep:
		return "step_" + s.Step
	case KindStepTotalProgress:
		return "step_" + s.Step + "-total_progress"
	case KindStatusTransition:
		return "status_" + string(s.Status)
	case KindTranslate:
		return "translate_into_" + s.Language
	case KindTranslateStep:
		return "into_" + s.Language + "-step_" + s.Step
	}
	return ""
}

// ParseScenario is the inverse of Scenario.String.
func ParseScenario(name string) (Scenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Scenario{}, fmt.Errorf("scenario name is empty")
	}

	if lang, ok := strings.CutPrefix(name, "translate_into_"); ok && lang != "" {
		return TranslateScenario(lang), nil
	}
	if rest, ok := strings.CutPrefix(name, "into_"); ok {
		lang, step, found := strings.Cut(rest, "-step_")
		if found && lang != "" && step != "" {
			return TranslateStepScenario(lang, step), nil
		}
	}
	if status, ok := strings.CutPrefix(name, "status_"); ok {
		s := Status(status)
		if s == StatusReviewable || s == StatusPublishable {
			return TransitionScenario(s), nil
		}
	}
	if rest, ok := strings.CutPrefix(name, "step_"); ok && rest != "" {
		if step, total := strings.CutSuffix(rest, "-total_progress"); total && step != "" {
			return TotalProgressScenario(step), nil
		}
		return StepScenario(rest), nil
	}
	if status, step, found := strings.Cut(name, "-step_"); found {
		if Status(status).valid() && step != "" {
			return StatusStepScenario(Status(status), step), nil
		}
	} else if Status(name).valid() {
		return StatusScenario(Status(name)), nil
	}

	return Scenario{}, fmt.Errorf("unknown scenario %q", name)
}

func (s Scenario) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Scenario) UnmarshalText(text []byte) error {
	parsed, err := ParseScenario(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
