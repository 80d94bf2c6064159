package rules

// ProgressSession computes validation progress for one snapshot. Failures
// are memoised per scenario for the lifetime of the session; start a new
// session after the snapshot changes.
type ProgressSession struct {
	validator *Validator
	rules     []Rule
	snapshot  Snapshot
	memo      map[Scenario][]Failure
}

func NewProgressSession(v *Validator, rules []Rule, snap Snapshot) *ProgressSession {
	return &ProgressSession{
		validator: v,
		rules:     rules,
		snapshot:  snap,
		memo:      make(map[Scenario][]Failure),
	}
}

// Failures returns the failing fields of scenario with the rule that failed.
func (p *ProgressSession) Failures(scenario Scenario) []Failure {
	if failures, ok := p.memo[scenario]; ok {
		return failures
	}
	failures := p.validator.Check(p.rules, p.snapshot, scenario)
	p.memo[scenario] = failures
	return failures
}

// Progress returns the percentage of the scenario's fields that validate.
// A scenario without validated fields is complete.
func (p *ProgressSession) Progress(scenario Scenario) int {
	attrs := ScenarioAttributes(p.rules, scenario)
	if len(attrs) == 0 {
		return 100
	}
	return (len(attrs) - len(p.Failures(scenario))) * 100 / len(attrs)
}

// InvalidFields returns the fields of scenario that do not validate.
func (p *ProgressSession) InvalidFields(scenario Scenario) []string {
	failures := p.Failures(scenario)
	if len(failures) == 0 {
		return nil
	}
	fields := make([]string, len(failures))
	for i, f := range failures {
		fields[i] = f.Field
	}
	return fields
}
