package openai

import (
	"testing"

	"github.com/poiesic/energuide/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPrompt(t *testing.T) {
	tmpl := newAnswerPrompt()

	t.Run("fills every slot", func(t *testing.T) {
		text, err := renderPrompt(tmpl, ai.Prompt{
			History:  "사용자: 안녕하세요\n",
			Context:  "REC는 신재생에너지 공급인증서입니다.",
			Question: "REC가 무엇인가요?",
		})
		require.NoError(t, err)

		assert.Contains(t, text, "[이전 대화]\n사용자: 안녕하세요")
		assert.Contains(t, text, "[컨텍스트]\nREC는 신재생에너지 공급인증서입니다.")
		assert.Contains(t, text, "[질문]\nREC가 무엇인가요?")
		assert.NotContains(t, text, "{{")
	})

	t.Run("empty history placeholder", func(t *testing.T) {
		text, err := renderPrompt(tmpl, ai.Prompt{Context: "c", Question: "q"})
		require.NoError(t, err)
		assert.Contains(t, text, "[이전 대화]\n없음")
	})
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(&ai.Config{})
	require.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider(ai.NewConfig(
		ai.WithHost("http://localhost:11434"),
		ai.WithEmbeddingModel("bge-m3"),
	))
	require.NoError(t, err)
	defer provider.Close()

	assert.Equal(t, "openai:bge-m3", provider.Name())
	assert.NotNil(t, provider.Embedder())
	assert.NotNil(t, provider.Generator())
}
