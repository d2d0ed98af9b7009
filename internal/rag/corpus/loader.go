package corpus

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is a raw policy document loaded from the docs folder.
type Document struct {
	Source    string // file name, used as the retrieval source id
	Title     string // first non-empty line of the document
	Text      string // raw content, normalization happens at chunking time
	CharCount int
}

// Load reads every .txt document under dir and verifies the required set is
// present. A missing required document is an error: the assistant must refuse
// to serve on an incomplete evidence base rather than run degraded.
func Load(dir string, required []string, logger *log.Logger) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("docs folder not available: %w", err)
	}

	available := map[string]bool{}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		available[e.Name()] = true
		names = append(names, e.Name())
	}

	var missing []string
	for _, name := range required {
		if !available[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required policy documents: %s", strings.Join(missing, ", "))
	}

	sort.Strings(names)

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		text := string(raw)
		doc := Document{
			Source:    name,
			Title:     extractTitle(text),
			Text:      text,
			CharCount: len(text),
		}
		if logger != nil {
			logger.Printf("loaded %s: %q (%d chars)", doc.Source, doc.Title, doc.CharCount)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func extractTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return "Unknown Policy"
}
