package agent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/energuide/conversation"
	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/intent"
	"github.com/poiesic/energuide/reference"
	"github.com/poiesic/energuide/respond"
	"github.com/poiesic/energuide/retrieval"
	"github.com/poiesic/energuide/tools"
)

// DocumentCounter reports the size of the document index.
type DocumentCounter interface {
	CountDocuments(ctx context.Context) (int, error)
}

// Reply is the outcome of one message.
type Reply struct {
	Text       string
	Intent     intent.Intent
	Confidence float64
	// OK is false when the reply reports a failure.
	OK bool
}

// SystemInfo describes the agent for status displays.
type SystemInfo struct {
	RetrievalBackend string
	EmbeddingModel   string
	DocumentCount    int
	HistoryCount     int
	HistoryCapacity  int
}

// Agent is the dialogue orchestrator of one conversation. Messages are
// handled strictly one at a time.
type Agent struct {
	mu sync.Mutex

	retriever  retrieval.Retriever
	classifier intent.Classifier
	resolver   *reference.Resolver
	predictor  tools.Predictor
	weather    tools.WeatherProvider
	integrator *respond.Integrator
	state      *conversation.State

	backendName    string
	embeddingModel string
	counter        DocumentCounter
	logger         *slog.Logger
}

// New creates an agent answering policy questions with retriever.
func New(retriever retrieval.Retriever, opts ...Option) (*Agent, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}

	a := &Agent{
		retriever:   retriever,
		resolver:    reference.NewResolver(),
		predictor:   tools.BaselinePredictor{},
		weather:     tools.StaticWeather{},
		integrator:  respond.NewIntegrator(),
		state:       conversation.New(conversation.DefaultWindow),
		backendName: "unknown",
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.classifier == nil {
		classifier, err := intent.NewKeywordClassifier(intent.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		a.classifier = classifier
	}

	return a, nil
}

// HandleMessage answers text and returns the reply.
func (a *Agent) HandleMessage(ctx context.Context, text string) string {
	return a.Handle(ctx, text).Text
}

// Handle answers text and records the exchange.
//
// The user turn and, on success, the assistant turn are appended together
// once the reply is final. A failure reply records only the user turn.
func (a *Agent) Handle(ctx context.Context, text string) Reply {
	a.mu.Lock()
	defer a.mu.Unlock()

	prior := a.state.Turns()
	history := conversation.Transcript(lastN(prior, a.state.Capacity()-1))

	label, confidence := a.classifier.ScoreConfidence(text)
	a.logger.Info("handling message", "intent", label, "confidence", confidence)

	reply := a.dispatch(ctx, text, label, confidence, prior, history)
	reply.Intent, reply.Confidence = label, confidence

	turns := []core.Turn{core.NewTurn(core.RoleUser, text)}
	if reply.OK {
		turns = append(turns, core.NewTurn(core.RoleAssistant, reply.Text))
	}
	if err := a.state.Append(turns...); err != nil {
		a.logger.Error("failed to record turns", "err", err)
	}

	return reply
}

func (a *Agent) dispatch(ctx context.Context, text string, label intent.Intent, confidence float64, prior []core.Turn, history string) Reply {
	if confidence == 0 {
		return Reply{Text: respond.DefaultResponse, OK: true}
	}

	switch label {
	case intent.PolicyInfo:
		return a.answerFromDocuments(ctx, label, text, history)

	case intent.FollowUp:
		query := text
		if res, ok := a.resolver.Resolve(text, prior); ok {
			a.logger.Debug("resolved follow-up", "anchor", res.Anchor, "replaced", res.Replaced)
			query = res.Query
		} else {
			a.logger.Debug("no previous exchange, answering follow-up as a new question")
		}
		return a.answerFromDocuments(ctx, label, query, history)

	case intent.Prediction:
		p, err := a.predict(ctx, text)
		if err != nil {
			return a.failure("발전량 예측에 실패했습니다")
		}
		return a.render(label, respond.ToolResult{Prediction: p})

	case intent.Weather:
		w, err := a.weather.Current(ctx, tools.ParseLocation(text))
		if err != nil {
			a.logger.Error("weather lookup failed", "err", err)
			return a.failure("날씨 정보를 가져오지 못했습니다")
		}
		return a.render(label, respond.ToolResult{Weather: &w})

	case intent.Comprehensive:
		rag := a.retriever.Retrieve(ctx, text, history)
		p, err := a.predict(ctx, text)
		if rag.Failed() && err != nil {
			return a.failure(rag.Err.Diagnostic())
		}
		if rag.Failed() {
			a.logger.Warn("comprehensive answer without policy section", "err", rag.Err)
		}
		return a.render(label, respond.ToolResult{RAG: &rag, Prediction: p})

	default:
		return a.render(label, respond.ToolResult{})
	}
}

func (a *Agent) answerFromDocuments(ctx context.Context, label intent.Intent, query, history string) Reply {
	rag := a.retriever.Retrieve(ctx, query, history)
	if rag.Failed() {
		a.logger.Error("retrieval failed", "stage", rag.Err.Stage, "err", rag.Err.Cause)
		return a.failure(rag.Err.Diagnostic())
	}
	return a.render(label, respond.ToolResult{RAG: &rag})
}

func (a *Agent) predict(ctx context.Context, text string) (*tools.Prediction, error) {
	p, err := a.predictor.Predict(ctx, tools.ParsePredictionRequest(text))
	if err != nil {
		a.logger.Error("prediction failed", "err", err)
		return nil, err
	}
	return &p, nil
}

func (a *Agent) render(label intent.Intent, result respond.ToolResult) Reply {
	return Reply{Text: a.integrator.Render(label, result), OK: true}
}

func (a *Agent) failure(diagnostic string) Reply {
	return Reply{Text: a.integrator.RenderError(diagnostic)}
}

// History returns the recorded turns, oldest first.
func (a *Agent) History() []core.Turn {
	return a.state.Turns()
}

// ClearHistory forgets the conversation.
func (a *Agent) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Clear()
}

// SystemInfo reports the retrieval backend and conversation usage.
// DocumentCount is -1 when the index cannot be counted.
func (a *Agent) SystemInfo(ctx context.Context) SystemInfo {
	info := SystemInfo{
		RetrievalBackend: a.backendName,
		EmbeddingModel:   a.embeddingModel,
		DocumentCount:    -1,
		HistoryCount:     a.state.Len(),
		HistoryCapacity:  a.state.Capacity(),
	}
	if a.counter != nil {
		if n, err := a.counter.CountDocuments(ctx); err == nil {
			info.DocumentCount = n
		} else {
			a.logger.Warn("could not count documents", "err", err)
		}
	}
	return info
}

func lastN(turns []core.Turn, n int) []core.Turn {
	if n <= 0 {
		return nil
	}
	if len(turns) > n {
		return turns[len(turns)-n:]
	}
	return turns
}
