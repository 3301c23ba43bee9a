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


package server

import "errors"

var (
	// ErrFactoryRequired is returned when a session store has no agent factory.
	ErrFactoryRequired = errors.New("agent factory is required")
	// ErrSessionsRequired is returned when a server has no session store.
	ErrSessionsRequired = errors.New("session store is required")
	// ErrInvalidTTL is returned for a non-positive session lifetime.
	ErrInvalidTTL = errors.New("session TTL must be positive")
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
)
