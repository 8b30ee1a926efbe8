package main

import (
	"fmt"

	"github.com/fwojciec/animgen"
)

// Run executes the symbols command.
func (c *SymbolsCmd) Run(deps *Dependencies) error {
	symbols, err := deps.Symbols.Symbols(deps.Ctx)
	if err != nil {
		return report(deps, err)
	}
	fmt.Fprintln(deps.Stdout, animgen.FormatSymbols(symbols, c.Max))
	return nil
}
