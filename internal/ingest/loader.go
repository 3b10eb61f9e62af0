// Package ingest loads the document corpus from a directory of JSON files.
package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"devopsrag/internal/domain"
)

// LoadDir reads every *.json file under dir, sorted by filename for
// deterministic ordering, and returns the documents with sequential ids
// doc-0, doc-1, ... Malformed files are logged and skipped, not fatal.
//
// Each file contributes its "text" field; if absent, the whole JSON object
// is serialized as the text. An optional "meta" object is carried verbatim
// as the document metadata.
func LoadDir(dir string, logger *slog.Logger) ([]domain.Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	docs := make([]domain.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := loadFile(p)
		if err != nil {
			logger.Warn("skipping malformed corpus file", "path", p, "error", err)
			continue
		}
		doc.ID = fmt.Sprintf("doc-%d", len(docs))
		docs = append(docs, doc)
	}
	return docs, nil
}

func loadFile(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Document{}, err
	}
	text, _ := raw["text"].(string)
	if text == "" {
		serialized, err := json.Marshal(raw)
		if err != nil {
			return domain.Document{}, err
		}
		text = string(serialized)
	}
	meta, _ := raw["meta"].(map[string]any)
	if meta == nil {
		meta = map[string]any{}
	}
	return domain.Document{Text: text, Metadata: meta}, nil
}
