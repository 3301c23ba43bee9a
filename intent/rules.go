package intent

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Rule is the keyword set of one intent. Keywords without an entry in
// Weights count 1.
type Rule struct {
	Keywords []string
	Weights  map[string]float64
}

// Rules maps every intent to its keyword rule.
type Rules map[Intent]Rule

// DefaultRules returns the built-in keyword sets for the renewable-energy domain.
func DefaultRules() Rules {
	return Rules{
		PolicyInfo: {
			Keywords: []string{
				"무엇", "뭐", "어떤", "정책", "제도", "방법", "절차",
				"지원금", "보조금", "REC", "RE100", "설치", "비용",
				"신청", "자격", "조건", "혜택", "규정", "법령",
				"인증", "승인", "허가", "등록", "신고", "서류",
				"금융지원", "금융", "지원", "사업", "프로그램", "검증",
				"탄소검증", "탄소", "인증서",
			},
			Weights: map[string]float64{
				"REC": 3, "지원금": 3, "보조금": 3, "정책": 2, "제도": 2,
			},
		},
		Prediction: {
			Keywords: []string{
				"예상", "예측", "얼마나", "몇", "분석", "계산",
				"발전량", "절약", "수익", "투자", "회수", "경제성",
				"월별", "연간", "일별", "시간별", "계절별",
				"효율", "성능", "생산량", "발전", "생산",
			},
			Weights: map[string]float64{
				"발전량": 3, "예측": 3, "경제성": 3, "수익": 2, "투자": 2,
			},
		},
		Weather: {
			Keywords: []string{
				"날씨", "기상", "일조량", "햇빛", "태양", "기온",
				"습도", "강수량", "구름", "맑음", "흐림", "비",
				"바람", "풍속", "풍력", "기후", "온도",
			},
			Weights: map[string]float64{
				"일조량": 3, "날씨": 2, "기상": 2, "기온": 2,
			},
		},
		Comprehensive: {
			Keywords: []string{
				"종합", "전체", "모든", "상세", "자세", "완전",
				"비용과", "정책과", "경제성과", "분석과",
				"비교", "대조", "함께", "동시에", "모두",
			},
			Weights: map[string]float64{
				"종합": 3, "전체": 2, "모든": 2, "비교": 2,
			},
		},
		FollowUp: {
			Keywords: []string{
				"그 제도", "이 제도", "그 정책", "이 정책",
				"그것", "이것", "그건", "그럼", "그러면", "그런",
				"그 내용", "언제부터", "더 자세히", "앞서", "방금", "아까",
			},
			Weights: map[string]float64{
				"그 제도": 3, "이 제도": 3, "그 정책": 3, "이 정책": 3, "그것": 2,
			},
		},
	}
}

// Merge returns a copy of r with extra applied on top: keywords are added
// and weights override existing ones.
func (r Rules) Merge(extra Rules) Rules {
	merged := make(Rules, len(r)+len(extra))
	for i, rule := range r {
		merged[i] = Rule{
			Keywords: slices.Clone(rule.Keywords),
			Weights:  maps.Clone(rule.Weights),
		}
	}
	for i, rule := range extra {
		base := merged[i]
		base.Keywords = append(base.Keywords, rule.Keywords...)
		if len(rule.Weights) > 0 && base.Weights == nil {
			base.Weights = make(map[string]float64, len(rule.Weights))
		}
		maps.Copy(base.Weights, rule.Weights)
		merged[i] = base
	}
	return merged
}

// keyword is a lowercased trigger with its resolved weight.
type keyword struct {
	text   string
	weight float64
}

// compile lowercases keywords, drops blanks and duplicates, and resolves
// weights. Weight keys are matched case-insensitively.
func (r Rules) compile() (map[Intent][]keyword, error) {
	compiled := make(map[Intent][]keyword, len(r))
	for i, rule := range r {
		if !i.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownIntent, int(i))
		}

		weights := make(map[string]float64, len(rule.Weights))
		for k, w := range rule.Weights {
			if w <= 0 {
				return nil, fmt.Errorf("%w: %q=%v", ErrInvalidWeight, k, w)
			}
			weights[strings.ToLower(k)] = w
		}

		seen := make(map[string]bool, len(rule.Keywords))
		for _, k := range rule.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			w, ok := weights[k]
			if !ok {
				w = 1
			}
			compiled[i] = append(compiled[i], keyword{text: k, weight: w})
		}
	}
	return compiled, nil
}
