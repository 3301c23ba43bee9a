package ingestion

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/energuide/core"
)

const (
	// DefaultSource labels entries that do not name their origin.
	DefaultSource = "knrec_faq"

	maxTitleRunes = 100
)

// FAQEntry is one crawled question and answer.
type FAQEntry struct {
	ArticleID    string `json:"article_id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	URL          string `json:"url"`
	Source       string `json:"source"`
	DocumentType string `json:"document_type"`
	CrawledAt    string `json:"crawled_at"`
}

// LoadFAQFile reads a JSON array of entries from path.
func LoadFAQFile(path string) ([]FAQEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFAQ(f)
}

// LoadFAQ decodes a JSON array of entries.
func LoadFAQ(r io.Reader) ([]FAQEntry, error) {
	var entries []FAQEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFAQ, err)
	}
	return entries, nil
}

// Empty reports whether the entry has neither title nor content.
func (e FAQEntry) Empty() bool {
	return strings.TrimSpace(e.Title) == "" && strings.TrimSpace(e.Content) == ""
}

// Text is the indexed passage text of the entry.
func (e FAQEntry) Text() string {
	return "제목: " + e.Title + "\n내용: " + e.Content
}

// Metadata returns the document metadata shared by every chunk of the entry.
func (e FAQEntry) Metadata() map[string]string {
	source := e.Source
	if source == "" {
		source = DefaultSource
	}

	meta := map[string]string{
		core.MetaTitle:  truncateRunes(e.Title, maxTitleRunes),
		core.MetaSource: source,
	}
	for key, value := range map[string]string{
		core.MetaArticleID:    e.ArticleID,
		core.MetaURL:          e.URL,
		core.MetaDocumentType: e.DocumentType,
		core.MetaCrawledAt:    e.CrawledAt,
	} {
		if value != "" {
			meta[key] = value
		}
	}
	return meta
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
