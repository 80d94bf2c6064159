package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"content-qa-cms/rules"

	"github.com/spf13/cobra"
)

var (
	rulesScenario string
	rulesValues   string
)

var rulesCmd = &cobra.Command{
	Use:   "rules <item-type>",
	Short: "Print the validation rules derived for an item type",
	Long: `Print the validation rules derived for an item type.

Translation rules depend on which source fields hold content. Pass the
current field values as JSON to see them.

Examples:
  content-qa-cms rules Article
  content-qa-cms rules Article --scenario publishable
  content-qa-cms rules Article --values '{"title":"Hello"}' --scenario translate_into_de`,
	Args: cobra.ExactArgs(1),
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().StringVarP(&rulesScenario, "scenario", "s", "", "only show rules active in this scenario")
	rulesCmd.Flags().StringVar(&rulesValues, "values", "", "field values as a JSON object")
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	def, ok := app.definitions.Lookup(args[0])
	if !ok {
		names := make([]string, len(app.definitions.ItemTypes))
		for i, d := range app.definitions.ItemTypes {
			names[i] = d.Name
		}
		return fmt.Errorf("unknown item type %q (known: %s)", args[0], strings.Join(names, ", "))
	}

	values := rules.Values{}
	if rulesValues != "" {
		if err := json.Unmarshal([]byte(rulesValues), &values); err != nil {
			return fmt.Errorf("parse --values: %w", err)
		}
	}

	var scenario rules.Scenario
	if rulesScenario != "" {
		var err error
		if scenario, err = rules.ParseScenario(rulesScenario); err != nil {
			return err
		}
	}

	printRules(cmd.OutOrStdout(), def, app.definitions.TranslationLanguages(), values, scenario)
	return nil
}

// printRules writes one line per rule. A non-zero scenario filters the
// rules and adds the validation progress of values in it.
func printRules(w io.Writer, def rules.Definition, languages []string, values rules.Values, scenario rules.Scenario) {
	derived := rules.Derive(def, languages, values)

	kind := "not preparable"
	if def.Preparable {
		kind = "preparable"
	}
	cyan.Fprintf(w, "%s", def.Name)
	faint.Fprintf(w, " (%s, first step %s)\n", kind, rules.FirstFlowStep(def))

	shown := 0
	for _, r := range derived {
		if !scenario.IsZero() && !r.AppliesTo(scenario) {
			continue
		}
		shown++

		on := make([]string, len(r.On))
		for i, s := range r.On {
			on[i] = s.String()
		}
		yellow.Fprintf(w, "  %-14s", r.Kind)
		fmt.Fprintf(w, "%-24s", strings.Join(r.Fields, ","))
		faint.Fprintf(w, "%s\n", strings.Join(on, " "))
	}
	if shown == 0 {
		faint.Fprintln(w, "  no rules")
	}

	if scenario.IsZero() {
		return
	}
	session := rules.NewProgressSession(rules.NewValidator(), derived, rules.Snapshot{Values: values})
	pct := session.Progress(scenario)
	printer := green
	if pct < 100 {
		printer = red
	}
	printer.Fprintf(w, "%s: %d%%", scenario, pct)
	if invalid := session.InvalidFields(scenario); len(invalid) > 0 {
		fmt.Fprintf(w, " (invalid: %s)", strings.Join(invalid, ", "))
	}
	fmt.Fprintln(w)
}
