// Package chunker turns policy documents into overlapping, metadata-tagged
// passages suitable for embedding and retrieval.
package chunker

import (
	"regexp"
	"strings"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 150
)

// Chunk is one retrievable unit of a policy document.
type Chunk struct {
	Text        string `json:"text"`
	Source      string `json:"source"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
	CharCount   int    `json:"char_count"`
}

// Splitter splits normalized text into overlapping windows using a
// priority-ordered separator list: paragraph-like separators first, then
// sentence, word and finally raw character boundaries.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 4
		}
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   []string{"\n\nSection", "\n\n", "\n", ". ", " "},
	}
}

var (
	spaceRunRE    = regexp.MustCompile(`[ \t]+`)
	hyphenBreakRE = regexp.MustCompile(`(\w)-\n(\w)`)
	newlineRunRE  = regexp.MustCompile(`\n{3,}`)
	punctCapRE    = regexp.MustCompile(`([.!?])([A-Z])`)
)

// Normalize cleans raw document text before splitting: collapses runs of
// spaces and tabs, merges hyphen-broken line wraps, caps blank-line runs at
// one separator, restores the space after sentence-terminal punctuation and
// strips every line.
func Normalize(text string) string {
	text = spaceRunRE.ReplaceAllString(text, " ")
	text = hyphenBreakRE.ReplaceAllString(text, "$1$2")
	text = newlineRunRE.ReplaceAllString(text, "\n\n")
	text = punctCapRE.ReplaceAllString(text, "$1 $2")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SplitDocument normalizes text and produces the document's chunks. Each
// chunk is prefixed with the document title (unless the window already
// carries it) so retrieval is biased toward document identity; the prefix is
// applied after splitting and therefore never broken across windows. A
// document shorter than the chunk size yields exactly one chunk.
func (s *Splitter) SplitDocument(text, source, title string) []Chunk {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	var windows []string
	if len(normalized) <= s.chunkSize {
		windows = []string{normalized}
	} else {
		windows = s.splitText(normalized, s.separators)
	}

	chunks := make([]Chunk, 0, len(windows))
	for i, w := range windows {
		if !strings.HasPrefix(w, title) && !strings.HasPrefix(w, "["+title+"]") {
			w = "[" + title + "]\n" + w
		}
		chunks = append(chunks, Chunk{
			Text:        w,
			Source:      source,
			ChunkIndex:  i,
			TotalChunks: len(windows),
			CharCount:   len(w),
		})
	}
	return chunks
}

// splitText recursively splits on the highest-priority separator present,
// then greedily merges the pieces back into windows no larger than the chunk
// size, retaining a tail of pieces between windows to form the overlap.
// Separators stay attached to the piece they precede, so merged windows
// reproduce the normalized text verbatim.
func (s *Splitter) splitText(text string, separators []string) []string {
	sepIdx := -1
	for i, sep := range separators {
		if strings.Contains(text, sep) {
			sepIdx = i
			break
		}
	}
	if sepIdx == -1 {
		return s.hardCut(text)
	}
	separator := separators[sepIdx]
	remaining := separators[sepIdx+1:]
	pieces := splitKeep(text, separator)

	var final []string
	var good []string
	for _, p := range pieces {
		if len(p) < s.chunkSize {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(remaining) == 0 {
			final = append(final, s.hardCut(p)...)
		} else {
			final = append(final, s.splitText(p, remaining)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// splitKeep splits text on separator, re-attaching the separator to the
// start of the piece that followed it. Whitespace-only pieces are dropped.
func splitKeep(text, separator string) []string {
	parts := strings.Split(text, separator)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = separator + p
		}
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// merge concatenates pieces into windows of at most chunkSize characters.
// When a window is emitted, leading pieces are dropped until the retained
// tail fits under the overlap budget; the tail seeds the next window.
func (s *Splitter) merge(pieces []string) []string {
	var docs []string
	var current []string
	total := 0
	for _, p := range pieces {
		if total+len(p) > s.chunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
				docs = append(docs, doc)
			}
			for len(current) > 0 && (total > s.chunkOverlap || (total+len(p) > s.chunkSize && total > 0)) {
				total -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += len(p)
	}
	if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// hardCut is the character-boundary last resort: fixed windows that share
// chunkOverlap trailing characters with their successor.
func (s *Splitter) hardCut(text string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}
	var out []string
	for start := 0; start < len(text); {
		end := start + s.chunkSize
		if end > len(text) {
			end = len(text)
		}
		out = append(out, text[start:end])
		if end == len(text) {
			break
		}
		start = end - s.chunkOverlap
		if start < 0 {
			start = 0
		}
	}
	return out
}
