// Package htmltomarkdown converts extracted documentation HTML to Markdown
// for indexing with headings, lists, tables and code blocks preserved.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/animgen"
)

var _ animgen.Converter = (*Converter)(nil)

var (
	// Sphinx and MkDocs append permalink anchors to every heading.
	headerLinkRe = regexp.MustCompile(`\s*\[[¶#]\]\([^)]*\)`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown. Heading permalinks are
// dropped and runs of blank lines collapsed, since both only add noise to
// embedded chunks.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", animgen.Errorf(animgen.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	result = headerLinkRe.ReplaceAllString(result, "")
	result = blankRunRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result), nil
}
