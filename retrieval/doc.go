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


// Package retrieval answers questions from the document index.
//
// The Engine embeds the question, asks the index for its nearest passages,
// converts distances to similarities with 1/(1+d), keeps passages at or above
// the threshold, drops duplicate content, cleans the surviving sentences into
// a context block and has the generator answer from it. The generated text is
// tidied before it is returned.
//
// Retrieval never returns an error to the caller. A miss yields
// NoInformationAnswer with no documents; a failing embedder, index or
// generator yields the same answer with Result.Err set to the failed Stage.
package retrieval
