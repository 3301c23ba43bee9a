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


package badger

import "github.com/poiesic/energuide/storage"

// NewMemoryRepository creates an in-memory document repository for testing.
// Closing the repository also closes its backend.
func NewMemoryRepository() (storage.DocumentRepository, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	repo, err := NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &ownedRepository{DocumentRepository: repo, backend: backend}, nil
}

// ownedRepository closes the backend it was created with.
type ownedRepository struct {
	storage.DocumentRepository
	backend *Backend
}

func (r *ownedRepository) Close() error {
	err := r.DocumentRepository.Close()
	if cerr := r.backend.Close(); err == nil {
		err = cerr
	}
	return err
}
