package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T, opts ...Option) *KeywordClassifier {
	t.Helper()
	c, err := NewKeywordClassifier(opts...)
	require.NoError(t, err)
	return c
}

func TestClassify_DefaultRules(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		input string
		want  Intent
	}{
		{"REC가 무엇인가요?", PolicyInfo},
		{"수원 5kW 설치 시 발전량은?", Prediction},
		{"현재 날씨는 어떤가요?", Weather},
		{"비용과 발전량을 종합적으로 알려주세요", Comprehensive},
		{"태양광 설치 지원금은?", PolicyInfo},
		{"투자 회수 기간은 얼마나 되나요?", Prediction},
		{"일조량이 많은 지역은?", Weather},
		{"정책과 경제성을 모두 분석해주세요", Comprehensive},
		{"그 제도는 언제부터 시행됐나요?", FollowUp},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.input))
		})
	}
}

func TestScoreConfidence_SingleIntentIsCertain(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		input string
		want  Intent
	}{
		{"REC가 무엇인가요?", PolicyInfo},
		{"보조금", PolicyInfo},
		{"수익", Prediction},
		{"풍속", Weather},
		{"일조량", Weather},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			label, confidence := c.ScoreConfidence(tt.input)
			assert.Equal(t, tt.want, label)
			assert.Equal(t, 1.0, confidence)
		})
	}
}

func TestScoreConfidence_EmptyInput(t *testing.T) {
	c := newTestClassifier(t)

	for _, input := range []string{"", "   ", "\t\n"} {
		label, confidence := c.ScoreConfidence(input)
		assert.Equal(t, PolicyInfo, label)
		assert.Zero(t, confidence)
	}
}

func TestScoreConfidence_NoKeywords(t *testing.T) {
	c := newTestClassifier(t)

	label, confidence := c.ScoreConfidence("안녕하세요")
	assert.Equal(t, PolicyInfo, label)
	assert.Zero(t, confidence)
}

func TestScoreConfidence_Ratio(t *testing.T) {
	c := newTestClassifier(t)

	// policy: 설치 1+0.5, 비용 1+0.5; weather: 비 (inside 비용) 1
	label, confidence := c.ScoreConfidence("설치 비용")
	assert.Equal(t, PolicyInfo, label)
	assert.InDelta(t, 0.75, confidence, 1e-9)
}

func TestScoreConfidence_Composite(t *testing.T) {
	c := newTestClassifier(t)

	t.Run("policy with weak prediction", func(t *testing.T) {
		label, confidence := c.ScoreConfidence("태양광 설치 비용은 얼마나")
		assert.Equal(t, Comprehensive, label)
		assert.Equal(t, 0.9, confidence)
	})

	t.Run("strong prediction stays prediction", func(t *testing.T) {
		label, _ := c.ScoreConfidence("수원 5kW 설치 시 발전량은?")
		assert.Equal(t, Prediction, label)
	})

	t.Run("comprehensive keywords force composite", func(t *testing.T) {
		label, confidence := c.ScoreConfidence("비용과 발전량을 종합적으로 알려주세요")
		assert.Equal(t, Comprehensive, label)
		assert.Equal(t, 0.9, confidence)
	})
}

func TestScores(t *testing.T) {
	c := newTestClassifier(t)

	t.Run("substring only", func(t *testing.T) {
		scores := c.Scores("REC가 무엇인가요?")
		assert.Equal(t, Scores{PolicyInfo: 4}, scores)
	})

	t.Run("follow-up outweighs policy", func(t *testing.T) {
		scores := c.Scores("그 제도는 언제부터 시행됐나요?")
		assert.Equal(t, 2.0, scores[PolicyInfo])
		assert.Equal(t, 4.5, scores[FollowUp])
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, c.Scores("REC"), c.Scores("rec"))
		assert.Equal(t, c.Scores("RE100 참여"), c.Scores("re100 참여"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, c.Scores(""))
	})
}

func TestScores_WholeTokenBonus(t *testing.T) {
	c := newTestClassifier(t, WithRules(Rules{
		PolicyInfo: {Keywords: []string{"rec"}, Weights: map[string]float64{"rec": 2}},
	}))

	assert.Equal(t, 3.0, c.Scores("rec")[PolicyInfo])
	assert.Equal(t, 3.0, c.Scores("what is rec?")[PolicyInfo])
	assert.Equal(t, 2.0, c.Scores("recycle")[PolicyInfo])
	assert.Equal(t, 2.0, c.Scores("rec가")[PolicyInfo])
	// A later whole-token occurrence still earns the bonus.
	assert.Equal(t, 3.0, c.Scores("recs and rec")[PolicyInfo])
}

func TestScores_DuplicateKeywordsCountOnce(t *testing.T) {
	c := newTestClassifier(t, WithRules(Rules{
		PolicyInfo: {Keywords: []string{"제도", "제도", " 제도 "}},
	}))

	assert.Equal(t, 1.5, c.Scores("제도")[PolicyInfo])
}

func TestScoreConfidence_TieBreakByPriority(t *testing.T) {
	c := newTestClassifier(t, WithRules(Rules{
		PolicyInfo: {Keywords: []string{"alpha"}},
		Prediction: {Keywords: []string{"gamma"}},
		Weather:    {Keywords: []string{"beta"}},
		FollowUp:   {Keywords: []string{"delta"}},
	}))

	tests := []struct {
		input string
		want  Intent
	}{
		{"alpha beta", PolicyInfo},
		{"beta alpha", PolicyInfo},
		{"beta gamma", Prediction},
		{"delta beta", Weather},
		{"delta", FollowUp},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			for range 20 {
				label, _ := c.ScoreConfidence(tt.input)
				require.Equal(t, tt.want, label)
			}
		})
	}
}

func TestWithExtraRules(t *testing.T) {
	c := newTestClassifier(t, WithExtraRules(Rules{
		FollowUp: {Keywords: []string{"그때"}, Weights: map[string]float64{"그때": 4}},
	}))

	assert.Equal(t, 6.0, c.Scores("그때")[FollowUp])

	// Defaults are untouched.
	_, ok := DefaultRules()[FollowUp].Weights["그때"]
	assert.False(t, ok)
}

func TestNewKeywordClassifier_InvalidOptions(t *testing.T) {
	t.Run("non-positive weight", func(t *testing.T) {
		_, err := NewKeywordClassifier(WithRules(Rules{
			PolicyInfo: {Keywords: []string{"a"}, Weights: map[string]float64{"a": 0}},
		}))
		assert.ErrorIs(t, err, ErrInvalidWeight)
	})

	t.Run("unknown intent", func(t *testing.T) {
		_, err := NewKeywordClassifier(WithRules(Rules{Intent(42): {Keywords: []string{"a"}}}))
		assert.ErrorIs(t, err, ErrUnknownIntent)
	})

	t.Run("negative threshold", func(t *testing.T) {
		_, err := NewKeywordClassifier(WithComprehensiveThreshold(-1))
		assert.ErrorIs(t, err, ErrInvalidThreshold)

		_, err = NewKeywordClassifier(WithCompositePredictionCeiling(-1))
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	})
}
