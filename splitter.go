package animgen

import (
	"strings"
	"unicode/utf8"
)

// Default chunking parameters. Sizes are measured in characters (runes).
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 150
)

// DefaultSeparators are tried in order: paragraphs, lines, words, characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter splits text into overlapping chunks no longer than ChunkSize.
//
// It splits on the first separator present in the text, recursing into
// pieces that are still too long with the remaining separators, and then
// greedily merges adjacent pieces back together. When a chunk is emitted,
// its trailing pieces totalling at most ChunkOverlap characters are carried
// into the next chunk.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// NewSplitter returns a Splitter with the default parameters.
func NewSplitter() *Splitter {
	return &Splitter{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		Separators:   DefaultSeparators,
	}
}

// Validate returns an error if the splitter parameters are inconsistent.
func (s *Splitter) Validate() error {
	if s.ChunkSize <= 0 {
		return Errorf(EINVALID, "chunk size must be positive, got %d", s.ChunkSize)
	}
	if s.ChunkOverlap < 0 {
		return Errorf(EINVALID, "chunk overlap must not be negative, got %d", s.ChunkOverlap)
	}
	if s.ChunkOverlap >= s.ChunkSize {
		return Errorf(EINVALID, "chunk overlap (%d) must be smaller than chunk size (%d)", s.ChunkOverlap, s.ChunkSize)
	}
	return nil
}

// Split splits text into chunks. Whitespace-only chunks are dropped.
func (s *Splitter) Split(text string) ([]string, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s.split(text, s.separators()), nil
}

// SplitPages splits every page and assigns chunk IDs, hashes and positions.
func (s *Splitter) SplitPages(pages []*Page) ([]*Chunk, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var chunks []*Chunk
	for _, page := range pages {
		for i, text := range s.split(page.Text, s.separators()) {
			hash := ContentHash(text)
			chunks = append(chunks, &Chunk{
				ID:      ChunkID(page.Source, i, hash),
				Source:  page.Source,
				Index:   i,
				Content: text,
				Hash:    hash,
			})
		}
	}
	return chunks, nil
}

func (s *Splitter) separators() []string {
	if len(s.Separators) == 0 {
		return DefaultSeparators
	}
	return s.Separators
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			rest = nil
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var final, good []string
	for _, piece := range splitOn(text, separator) {
		if utf8.RuneCountInString(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, separator)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, s.hardSplit(piece)...)
		} else {
			final = append(final, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, separator)...)
	}
	return final
}

func (s *Splitter) merge(splits []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)
	joinCost := func(current []string) int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}

	var docs, current []string
	total := 0
	for _, piece := range splits {
		n := utf8.RuneCountInString(piece)
		if total+n+joinCost(current) > s.ChunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.ChunkOverlap || (total > 0 && total+n+joinCost(current) > s.ChunkSize) {
				total -= utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// hardSplit cuts text that no separator could break into ChunkSize pieces.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += s.ChunkSize {
		end := min(start+s.ChunkSize, len(runes))
		if doc := strings.TrimSpace(string(runes[start:end])); doc != "" {
			out = append(out, doc)
		}
	}
	return out
}

func splitOn(text, separator string) []string {
	var parts []string
	if separator == "" {
		parts = make([]string, 0, len(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(text, separator)
	}

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
