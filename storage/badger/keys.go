package badger

import (
	"encoding/binary"

	"github.com/poiesic/energuide/core"
)

// Key prefixes for different data types
const (
	documentPrefix     = "docrec:"
	documentHashPrefix = "dochash:"
	documentIDSeq      = "docrecseq"
)

// makeDocumentKey generates a key for a document by ID.
// IDs are written BigEndian so prefix iteration walks documents in ID order.
func makeDocumentKey(id core.ID) []byte {
	return appendID([]byte(documentPrefix), id)
}

// makeDocumentHashKey generates a key for the content hash index.
// Format: prefix:hash
func makeDocumentHashKey(hash core.ID) []byte {
	return appendID([]byte(documentHashPrefix), hash)
}

// idFromDocumentKey extracts the document ID from a primary key.
func idFromDocumentKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(documentPrefix):]))
}

func appendID(prefix []byte, id core.ID) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
