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


package retrieval

import "errors"

var (
	// ErrIndexRequired is returned when no document index is provided.
	ErrIndexRequired = errors.New("document index required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidTopK is returned for a non-positive neighbor count.
	ErrInvalidTopK = errors.New("top k must be positive")

	// ErrInvalidSimilarity is returned for a threshold outside [0,1].
	ErrInvalidSimilarity = errors.New("similarity threshold must be within [0,1]")

	// ErrInvalidFragmentLength is returned for a negative fragment length.
	ErrInvalidFragmentLength = errors.New("fragment length must not be negative")
)
