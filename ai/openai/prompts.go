package openai

import (
	"github.com/poiesic/energuide/ai"
	"github.com/tmc/langchaingo/prompts"
)

// answerTemplate is rendered with Go template syntax by langchaingo.
const answerTemplate = `당신은 재생에너지 정책과 제도를 안내하는 AI 상담사입니다.

답변 원칙:
- 컨텍스트에 있는 구체적인 수치, 절차, 조건을 중심으로 답변합니다.
- 제목이 잘려 있으면 무시하고 본문의 완결된 정보만 사용합니다.
- 핵심을 짧고 분명하게 전달합니다.
- 마크다운, 굵은 글씨, 특수 기호 없이 일반 문장으로만 답변합니다.
- 원문 문장이 끊겨 있으면 의미가 통하는 완결된 문장으로 정리합니다.
- 컨텍스트에 없는 내용은 추측하지 않습니다.

[이전 대화]와 [컨텍스트]에 있는 정보만 근거로 답변하세요.

[이전 대화]
{{.history}}

[컨텍스트]
{{.context}}

[질문]
{{.question}}

답변:`

func newAnswerPrompt() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(answerTemplate, []string{"history", "context", "question"})
}

// renderPrompt fills the answer template. An empty history is shown as "없음".
func renderPrompt(tmpl prompts.PromptTemplate, p ai.Prompt) (string, error) {
	history := p.History
	if history == "" {
		history = "없음"
	}
	return tmpl.Format(map[string]any{
		"history":  history,
		"context":  p.Context,
		"question": p.Question,
	})
}
