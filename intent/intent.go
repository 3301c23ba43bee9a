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


package intent

import "fmt"

// Intent is the category of a user request.
type Intent int

const (
	// PolicyInfo asks about policies, programs, subsidies and procedures.
	// It is also the default when nothing else matches.
	PolicyInfo Intent = iota
	// Prediction asks for generation or economic estimates.
	Prediction
	// Weather asks about weather or irradiance.
	Weather
	// Comprehensive spans policy and prediction and gets a merged answer.
	Comprehensive
	// FollowUp refers back to the previous exchange.
	FollowUp
)

// Priority is the tie-break order used when two intents score the same.
var Priority = []Intent{PolicyInfo, Prediction, Weather, Comprehensive, FollowUp}

var intentNames = map[Intent]string{
	PolicyInfo:    "policy_info",
	Prediction:    "prediction",
	Weather:       "weather",
	Comprehensive: "comprehensive",
	FollowUp:      "follow_up",
}

var intentDescriptions = map[Intent]string{
	PolicyInfo:    "정책/제도 정보 질문",
	Prediction:    "발전량/경제성 예측 질문",
	Weather:       "기상 정보 질문",
	Comprehensive: "종합 분석 질문",
	FollowUp:      "이전 대화에 대한 후속 질문",
}

// String returns the snake_case label used in config files and logs.
func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return fmt.Sprintf("intent(%d)", int(i))
}

// Description returns a short Korean description of the intent.
func (i Intent) Description() string {
	if d, ok := intentDescriptions[i]; ok {
		return d
	}
	return "알 수 없는 의도"
}

// Valid reports whether i is one of the declared intents.
func (i Intent) Valid() bool {
	_, ok := intentNames[i]
	return ok
}

// ParseIntent maps a label such as "policy_info" back to its Intent.
func ParseIntent(label string) (Intent, error) {
	for i, name := range intentNames {
		if name == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownIntent, label)
}
