package main

import (
	"fmt"

	"github.com/fwojciec/animgen"
)

// Run executes the templates command.
func (c *TemplatesCmd) Run(deps *Dependencies) error {
	for _, t := range animgen.Templates() {
		fmt.Fprintln(deps.Stdout, t)
	}
	return nil
}

// Run executes the validate command.
func (c *ValidateCmd) Run(deps *Dependencies) error {
	suggestions, err := animgen.ValidateQuery(c.Query)
	if err != nil {
		return report(deps, err)
	}

	if len(suggestions) == 0 {
		fmt.Fprintln(deps.Stdout, "Looks good.")
		return nil
	}
	fmt.Fprintln(deps.Stdout, "Valid, but it may not animate well:")
	for _, s := range suggestions {
		fmt.Fprintf(deps.Stdout, "  - %s\n", s)
	}
	return nil
}
