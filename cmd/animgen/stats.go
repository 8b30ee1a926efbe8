package main

import "fmt"

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.History.Stats(deps.Ctx, c.Popular)
	if err != nil {
		return report(deps, err)
	}

	w := deps.Stdout
	fmt.Fprintf(w, "Generations:      %d\n", stats.Total)
	fmt.Fprintf(w, "Succeeded:        %d\n", stats.Succeeded)
	fmt.Fprintf(w, "Fallbacks:        %d\n", stats.Fallbacks)
	fmt.Fprintf(w, "Rendered:         %d\n", stats.Rendered)
	fmt.Fprintf(w, "Success rate:     %.1f%%\n", stats.SuccessRate*100)
	fmt.Fprintf(w, "Average duration: %s\n", elapsed(stats.AverageDuration))

	if len(stats.PopularQueries) > 0 {
		fmt.Fprintln(w, "Popular questions:")
		for i, q := range stats.PopularQueries {
			fmt.Fprintf(w, "  %d. %s\n", i+1, q)
		}
	}
	return nil
}
