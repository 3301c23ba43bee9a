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


package respond

import (
	"strconv"
	"strings"

	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/intent"
	"github.com/poiesic/energuide/retrieval"
	"github.com/poiesic/energuide/tools"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// DefaultResponse is the reply when no tool applies.
	DefaultResponse = "죄송합니다. 질문을 이해하지 못했습니다. 재생에너지 관련 질문을 해주세요."
	// Unknown stands in for any missing field so replies keep their shape.
	Unknown = "알 수 없음"
	// ErrorPrefix marks every failure reply.
	ErrorPrefix = "❗ 오류: "

	DefaultMaxLinks = 3
	linksHeader     = "참고할 만한 자료 링크예요:"
)

// ToolResult carries what the tools produced for one message. Exactly one
// field is set, except for the comprehensive intent which sets RAG and
// Prediction.
type ToolResult struct {
	RAG        *retrieval.Result
	Prediction *tools.Prediction
	Weather    *tools.Weather
	Text       string
}

// Integrator turns tool results into the final reply text.
type Integrator struct {
	maxLinks int
	lang     language.Tag
}

// Option configures an Integrator.
type Option func(*Integrator)

// WithMaxLinks caps the reference links appended to retrieval answers.
func WithMaxLinks(n int) Option {
	return func(i *Integrator) {
		if n >= 0 {
			i.maxLinks = n
		}
	}
}

// WithLanguage sets the locale used for number formatting.
func WithLanguage(tag language.Tag) Option {
	return func(i *Integrator) {
		i.lang = tag
	}
}

// NewIntegrator creates an Integrator with Korean number formatting and at
// most three links.
func NewIntegrator(opts ...Option) *Integrator {
	i := &Integrator{
		maxLinks: DefaultMaxLinks,
		lang:     language.Korean,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Render builds the reply for label from result.
func (i *Integrator) Render(label intent.Intent, result ToolResult) string {
	switch label {
	case intent.PolicyInfo, intent.FollowUp:
		return i.renderRAG(result.RAG)
	case intent.Prediction:
		return i.renderPrediction(result.Prediction)
	case intent.Weather:
		return i.renderWeather(result.Weather)
	case intent.Comprehensive:
		return i.renderComprehensive(result.RAG, result.Prediction)
	default:
		if result.Text != "" {
			return result.Text
		}
		return DefaultResponse
	}
}

// RenderError builds a failure reply from a short diagnostic.
func (i *Integrator) RenderError(diagnostic string) string {
	if diagnostic == "" {
		diagnostic = "요청을 처리하지 못했습니다"
	}
	return ErrorPrefix + diagnostic
}

func (i *Integrator) renderRAG(r *retrieval.Result) string {
	if r == nil {
		return retrieval.NoInformationAnswer
	}

	var b strings.Builder
	b.WriteString(r.Answer)
	if urls := i.links(r.Documents); len(urls) > 0 {
		b.WriteString("\n\n" + linksHeader)
		for n, url := range urls {
			b.WriteString("\n" + strconv.Itoa(n+1) + ". " + url)
		}
	}
	return b.String()
}

// links returns up to maxLinks distinct document URLs in retrieval order.
func (i *Integrator) links(docs []core.ScoredDocument) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, doc := range docs {
		if len(urls) >= i.maxLinks {
			break
		}
		url := strings.TrimSpace(doc.Document.Meta(core.MetaURL))
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		urls = append(urls, url)
	}
	return urls
}

func (i *Integrator) renderPrediction(p *tools.Prediction) string {
	var b strings.Builder
	b.WriteString("📊 발전량 예측 결과")
	if p != nil {
		b.WriteString(" (" + p.Location + ", " + formatFloat(p.CapacityKW) + "kW)")
	}
	b.WriteString(":\n\n")
	i.writeGeneration(&b, p)
	b.WriteString("• 예측 신뢰도: ")
	if p != nil {
		b.WriteString(strconv.FormatFloat(p.Confidence*100, 'f', 1, 64) + "%")
	} else {
		b.WriteString(Unknown)
	}
	b.WriteString("\n\n💡 이 예측은 해당 지역의 일조량과 기온 데이터를 기반으로 계산되었습니다.")
	return b.String()
}

func (i *Integrator) renderComprehensive(r *retrieval.Result, p *tools.Prediction) string {
	var b strings.Builder
	b.WriteString("🌱 태양광 설치 종합 상담 결과:\n\n")

	b.WriteString("📋 정책/제도 정보:\n")
	if r != nil && !r.Failed() && r.Answer != "" {
		b.WriteString(r.Answer)
	} else {
		b.WriteString(Unknown)
	}
	b.WriteString("\n\n")

	b.WriteString("📊 발전량 예측:\n")
	i.writeGeneration(&b, p)
	b.WriteString("\n")

	b.WriteString("💰 경제성 분석:\n")
	if p != nil {
		b.WriteString("• 설치비용: " + i.number(p.InstallCost) + "만원\n")
		b.WriteString("• 20년 총 절약액: " + i.number(p.Savings20Years) + "만원\n")
		b.WriteString("• 투자 회수 기간: " + strconv.Itoa(p.PaybackYears) + "년\n")
	} else {
		b.WriteString("• 설치비용: " + Unknown + "\n")
		b.WriteString("• 20년 총 절약액: " + Unknown + "\n")
		b.WriteString("• 투자 회수 기간: " + Unknown + "\n")
	}
	b.WriteString("\n💡 이 분석은 최신 정책 정보와 지역별 기상 데이터를 종합하여 제공됩니다.")
	return b.String()
}

func (i *Integrator) writeGeneration(b *strings.Builder, p *tools.Prediction) {
	if p == nil {
		b.WriteString("• 연간 예상 발전량: " + Unknown + "\n")
		b.WriteString("• 월별 발전량: " + Unknown + "\n")
		return
	}
	b.WriteString("• 연간 예상 발전량: " + i.number(p.AnnualKWh) + "kWh\n")
	b.WriteString("• 월별 발전량: 여름 " + i.number(p.SummerMonthlyKWh) + "kWh, 겨울 " + i.number(p.WinterMonthlyKWh) + "kWh\n")
}

func (i *Integrator) renderWeather(w *tools.Weather) string {
	if w == nil {
		return "현재 날씨: " + Unknown
	}
	return w.Location + " 현재 날씨: " + w.Description +
		", 온도: " + formatFloat(w.TemperatureC) + "°C" +
		", 습도: " + formatFloat(w.HumidityPct) + "%" +
		", 일사량: " + formatFloat(w.SolarRadiation) + "W/m²"
}

// number formats n with the locale's digit grouping.
func (i *Integrator) number(n int) string {
	return message.NewPrinter(i.lang).Sprintf("%d", n)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
