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


// Package agent sequences classification, follow-up resolution, tools and
// rendering for each incoming message.
//
// An Agent owns one conversation.State. Handle classifies the message,
// rewrites follow-ups against the previous exchange, runs the tool for the
// intent and renders the reply. Failures become "❗ 오류: ..." replies and
// never escape as errors; the next message is handled normally.
//
// Input with no matching keyword gets the default reply without touching the
// document index.
package agent
