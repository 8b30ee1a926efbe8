package mock

import "github.com/fwojciec/animgen"

var _ animgen.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of animgen.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*animgen.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*animgen.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ animgen.Converter = (*Converter)(nil)

// Converter is a mock implementation of animgen.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ animgen.FrameworkDetector = (*FrameworkDetector)(nil)

// FrameworkDetector is a mock implementation of animgen.FrameworkDetector.
type FrameworkDetector struct {
	DetectFn func(html string) animgen.Framework
}

func (d *FrameworkDetector) Detect(html string) animgen.Framework {
	return d.DetectFn(html)
}
