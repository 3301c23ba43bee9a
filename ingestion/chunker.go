package ingestion

import (
	"maps"
	"strconv"
	"strings"

	"github.com/poiesic/energuide/core"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

// Separators tried in order when splitting passages.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// chunker turns FAQ entries into unsaved documents.
type chunker struct {
	splitter textsplitter.TextSplitter
}

func newChunker(size, overlap int) chunker {
	return chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators(defaultSeparators),
		),
	}
}

// split returns one document per chunk of entry, each tagged with its chunk
// index. Empty entries yield nothing.
func (c chunker) split(entry FAQEntry) ([]*core.Document, error) {
	if entry.Empty() {
		return nil, nil
	}

	chunks, err := c.splitter.SplitText(entry.Text())
	if err != nil {
		return nil, err
	}

	base := entry.Metadata()
	docs := make([]*core.Document, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		meta := maps.Clone(base)
		meta[core.MetaChunk] = strconv.Itoa(len(docs))
		docs = append(docs, &core.Document{Content: chunk, Metadata: meta})
	}
	return docs, nil
}
