package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/poiesic/energuide/agent"
	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/retrieval"
)

const (
	statusSuccess = "success"
	statusError   = "error"
	statusReady   = "ready"
)

// MaxSearchResults bounds k on the search endpoint.
const MaxSearchResults = 50

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Response  string `json:"response"`
	Intent    string `json:"intent"`
}

type turnDTO struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type historyResponse struct {
	Status    string    `json:"status"`
	SessionID string    `json:"session_id"`
	History   []turnDTO `json:"history"`
}

type systemInfoDTO struct {
	RetrievalBackend string `json:"retrieval_backend"`
	EmbeddingModel   string `json:"embedding_model"`
	DocumentCount    int    `json:"document_count"`
	HistoryCount     int    `json:"history_count"`
	HistoryCapacity  int    `json:"history_capacity"`
	ActiveSessions   int    `json:"active_sessions"`
}

type statusResponse struct {
	Status     string        `json:"status"`
	SystemInfo systemInfoDTO `json:"system_info"`
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type searchHit struct {
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float64           `json:"similarity"`
}

type searchResponse struct {
	Status  string      `json:"status"`
	Query   string      `json:"query"`
	Results []searchHit `json:"results"`
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (s *Server) registerRoutes(r fiber.Router) {
	r.Post("/chat", s.chat)
	r.Get("/chat/history", s.history)
	r.Delete("/chat/history", s.clearHistory)

	r.Get("/chatbot/status", s.status)
	r.Post("/rag/search", s.search)
}

func fail(ctx *fiber.Ctx, code int, msg string) error {
	return ctx.Status(code).JSON(errorResponse{Status: statusError, Error: msg})
}

func (s *Server) health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "healthy"})
}

func (s *Server) chat(ctx *fiber.Ctx) error {
	var req chatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fail(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return fail(ctx, fiber.StatusBadRequest, "message is required")
	}

	id, a, err := s.sessions.GetOrCreate(req.SessionID)
	if err != nil {
		s.logger.Error("could not start session", "err", err)
		return fail(ctx, fiber.StatusInternalServerError, "could not start session")
	}

	reply := a.Handle(ctx.UserContext(), req.Message)
	s.logger.Debug("chat handled", "session", id, "intent", reply.Intent.String(), "ok", reply.OK)

	return ctx.JSON(chatResponse{
		Status:    statusSuccess,
		SessionID: id,
		Message:   req.Message,
		Response:  reply.Text,
		Intent:    reply.Intent.String(),
	})
}

func (s *Server) session(ctx *fiber.Ctx) (string, *agent.Agent, error) {
	id := ctx.Query("session_id")
	a, err := s.sessions.Get(id)
	return id, a, err
}

func (s *Server) history(ctx *fiber.Ctx) error {
	id, a, err := s.session(ctx)
	if err != nil {
		return sessionError(ctx, err)
	}

	turns := a.History()
	out := make([]turnDTO, 0, len(turns))
	for _, t := range turns {
		out = append(out, turnDTO{Role: t.Role.String(), Text: t.Text, Timestamp: t.Timestamp})
	}
	return ctx.JSON(historyResponse{Status: statusSuccess, SessionID: id, History: out})
}

func (s *Server) clearHistory(ctx *fiber.Ctx) error {
	id, a, err := s.session(ctx)
	if err != nil {
		return sessionError(ctx, err)
	}
	a.ClearHistory()
	return ctx.JSON(historyResponse{Status: statusSuccess, SessionID: id, History: []turnDTO{}})
}

func (s *Server) status(ctx *fiber.Ctx) error {
	a, err := s.sessions.Get(ctx.Query("session_id"))
	if err != nil {
		a, err = s.sessions.NewAgent()
		if err != nil {
			s.logger.Error("could not build agent", "err", err)
			return fail(ctx, fiber.StatusInternalServerError, "assistant is unavailable")
		}
	}

	info := a.SystemInfo(ctx.UserContext())
	return ctx.JSON(statusResponse{
		Status: statusReady,
		SystemInfo: systemInfoDTO{
			RetrievalBackend: info.RetrievalBackend,
			EmbeddingModel:   info.EmbeddingModel,
			DocumentCount:    info.DocumentCount,
			HistoryCount:     info.HistoryCount,
			HistoryCapacity:  info.HistoryCapacity,
			ActiveSessions:   s.sessions.Count(),
		},
	})
}

func (s *Server) search(ctx *fiber.Ctx) error {
	if s.searcher == nil {
		return fail(ctx, fiber.StatusNotImplemented, "search is not enabled")
	}

	var req searchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fail(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return fail(ctx, fiber.StatusBadRequest, "query is required")
	}
	if req.K < 0 || req.K > MaxSearchResults {
		return fail(ctx, fiber.StatusBadRequest, "k is out of range")
	}

	docs, err := s.searcher.Search(ctx.UserContext(), req.Query, req.K)
	if err != nil {
		s.logger.Error("search failed", "err", err)
		return fail(ctx, fiber.StatusInternalServerError, searchDiagnostic(err))
	}

	return ctx.JSON(searchResponse{Status: statusSuccess, Query: req.Query, Results: toHits(docs)})
}

// searchDiagnostic keeps internal error text out of responses.
func searchDiagnostic(err error) string {
	var rerr *retrieval.Error
	if errors.As(err, &rerr) {
		return rerr.Diagnostic()
	}
	return "search failed"
}

func toHits(docs []core.ScoredDocument) []searchHit {
	hits := make([]searchHit, 0, len(docs))
	for _, d := range docs {
		hits = append(hits, searchHit{
			Content:    d.Document.Content,
			Metadata:   d.Document.Metadata,
			Similarity: d.Similarity,
		})
	}
	return hits
}

func sessionError(ctx *fiber.Ctx, err error) error {
	if errors.Is(err, ErrSessionNotFound) {
		return fail(ctx, fiber.StatusNotFound, "session not found")
	}
	return fail(ctx, fiber.StatusInternalServerError, "session unavailable")
}
