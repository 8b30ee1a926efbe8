package main

import (
	"fmt"
	"regexp"

	"github.com/fwojciec/animgen"
	"github.com/fwojciec/animgen/mirror"
)

// Run executes the mirror command.
func (c *MirrorCmd) Run(deps *Dependencies) error {
	filter := &animgen.URLFilter{}
	for _, pattern := range c.Include {
		re, err := compileFilter(pattern)
		if err != nil {
			return report(deps, err)
		}
		filter.Include = append(filter.Include, re)
	}
	for _, pattern := range c.Exclude {
		re, err := compileFilter(pattern)
		if err != nil {
			return report(deps, err)
		}
		filter.Exclude = append(filter.Exclude, re)
	}

	if c.Preview {
		urls, err := deps.Mirror.Discover(deps.Ctx, c.URL, filter)
		if err != nil {
			return report(deps, err)
		}
		for _, u := range urls {
			fmt.Fprintln(deps.Stdout, u)
		}
		return nil
	}

	progress := func(p animgen.FetchProgress) {
		if p.Error != nil {
			fmt.Fprintf(deps.Stderr, "\rskip %s: %s\n", p.URL, animgen.ErrorMessage(p.Error))
		}
		fmt.Fprintf(deps.Stdout, "\r[%d/%d] %-60s", p.Completed, p.Total, mirror.TruncateURL(p.URL, 60))
	}

	result, err := deps.Mirror.Run(deps.Ctx, c.URL, mirror.Options{Filter: filter, Progress: progress})
	fmt.Fprintf(deps.Stdout, "\r%80s\r", "")
	if err != nil {
		return report(deps, err)
	}

	how := "from sitemap"
	if result.Crawled {
		how = "by following links"
	}
	fmt.Fprintf(deps.Stdout, "Mirrored %d of %d pages %s (%s) in %s\n",
		result.Saved, result.Discovered, how, mirror.FormatBytes(result.Bytes), elapsed(result.Duration))
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stdout, "%d pages failed\n", result.Failed)
	}
	return nil
}

func compileFilter(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, animgen.Errorf(animgen.EINVALID, "invalid filter pattern %q: %v", pattern, err)
	}
	return re, nil
}
