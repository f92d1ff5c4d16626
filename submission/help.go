package submission

import (
	"fmt"
	"strings"
)

// Help returns a plain-text description of every form field, derived from
// the loaded schema: key, kind, whether it is optional, its label, help
// text and valid choices.
func (c *Client) Help() string {
	b := &strings.Builder{}
	for _, def := range c.schema.All() {
		opt := ""
		if !def.Required {
			opt = ", optional"
		}
		fmt.Fprintf(b, "%s (%s%s)\n%s\n", def.Key, def.Kind, opt, strings.Repeat("-", len(def.Key)))
		if def.Label != "" {
			fmt.Fprintln(b, def.Label)
		}
		if def.HelpText != "" {
			fmt.Fprintln(b, def.HelpText)
		}
		if def.HasChoices() {
			fmt.Fprintf(b, "Valid choices:\n  {%s}\n", strings.Join(def.Choices, ", "))
		}
		fmt.Fprintln(b)
	}
	return b.String()
}
