package retrieval

import (
	"fmt"

	"github.com/poiesic/energuide/core"
)

// Stage names the external call that failed.
type Stage string

const (
	StageEmbed    Stage = "embed"
	StageSearch   Stage = "search"
	StageGenerate Stage = "generate"
)

// Error records a failed external call during retrieval.
type Error struct {
	Stage Stage
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retrieval %s failed: %v", e.Stage, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Diagnostic is a short user-safe description of the failure.
func (e *Error) Diagnostic() string {
	switch e.Stage {
	case StageEmbed:
		return "질문 임베딩 생성에 실패했습니다"
	case StageSearch:
		return "문서 검색에 실패했습니다"
	case StageGenerate:
		return "답변 생성에 실패했습니다"
	default:
		return "검색 처리 중 문제가 발생했습니다"
	}
}

// Result is the outcome of one retrieval.
//
// Documents are sorted by non-increasing similarity and never share content.
// An empty Documents list always comes with NoInformationAnswer.
type Result struct {
	Answer    string
	Documents []core.ScoredDocument
	Err       *Error
}

// Failed reports whether an external call failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Found reports whether relevant documents backed the answer.
func (r Result) Found() bool {
	return r.Err == nil && len(r.Documents) > 0
}
