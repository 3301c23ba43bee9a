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


// Package ai defines the model capabilities the assistant consumes.
//
// Two capabilities are used: an Embedder that maps text to vectors for the
// document index, and a Generator that turns a Prompt (history, context,
// question) into an answer. An AIProvider bundles both with shared
// configuration. Concrete implementations live in ai/openai (any
// OpenAI-compatible endpoint) and ai/mock (tests).
package ai
