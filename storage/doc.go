// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the storage abstraction layer for the document index.
//
// This package defines repository interfaces that decouple the index
// implementation from retrieval and ingestion. Different backends (BadgerDB,
// in-memory) can be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Backend constructors return concrete types so callers can reach backend
// specifics; helpers meant for wiring return the interface:
//
//	repo, err := badger.NewDocumentRepository(backend)  // *badger.DocumentRepository
//	repo, err := badger.NewMemoryRepository()           // storage.DocumentRepository
//
// # Architecture
//
//   - Repository: lifecycle (Close)
//   - VectorSearcher: nearest-neighbor queries
//   - DocumentRepository: the embedding index (documents + vectors)
//
// # Usage
//
//	repo, err := badger.NewMemoryRepository()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
//	added, err := repo.AddDocuments(ctx, &core.Document{Content: "...", Vector: vec})
//	hits, err := repo.NearestNeighbors(ctx, queryVec, 5)
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
