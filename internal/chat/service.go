package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"paperchat/internal/models"
	"paperchat/internal/prompt"
	"paperchat/internal/providers"
	"paperchat/internal/query"
	"paperchat/internal/retrieval"
	"paperchat/internal/storage"

	"github.com/google/uuid"
)

type PaperStore interface {
	GetPaper(ctx context.Context, paperID string) (models.PaperMetadata, error)
}

type HistoryStore interface {
	AppendTurn(ctx context.Context, sessionID string, turn models.ChatTurn) error
	ListTurns(ctx context.Context, sessionID string) ([]models.ChatTurn, error)
}

type AuditLogger interface {
	LogCall(ctx context.Context, rec storage.ModelCallRecord) error
}

type Request struct {
	SessionID string          `json:"sessionId,omitempty"`
	PaperID   string          `json:"paperId"`
	Question  models.Question `json:"question"`
}

// Service runs the synchronous ask path: classify, rank, assemble, generate.
// It holds no per-question state, so distinct questions can run in parallel.
type Service struct {
	classifier *query.Classifier
	ranker     *retrieval.Ranker
	content    retrieval.ContentStore
	papers     PaperStore
	history    HistoryStore
	providers  *providers.Manager
	audit      AuditLogger
	window     int
}

func NewService(content retrieval.ContentStore, papers PaperStore, history HistoryStore, pm *providers.Manager, audit AuditLogger, relevanceFloor float64, window int) *Service {
	if window <= 0 {
		window = 3
	}
	return &Service{
		classifier: query.NewClassifier(),
		ranker:     retrieval.NewRanker(content, relevanceFloor),
		content:    content,
		papers:     papers,
		history:    history,
		providers:  pm,
		audit:      audit,
		window:     window,
	}
}

// Answer handles one question. Model failures come back as success:false
// with the error message; retry policy belongs to the caller.
func (s *Service) Answer(ctx context.Context, req Request) models.ChatResponse {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	meta := models.PaperMetadata{PaperID: req.PaperID}
	if s.papers != nil {
		if m, err := s.papers.GetPaper(ctx, req.PaperID); err == nil {
			meta = m
		}
	}

	units, err := s.content.GetContentUnits(ctx, req.PaperID)
	if err != nil {
		return errorResponse(sessionID, fmt.Errorf("load paper content: %w", err))
	}

	profile := s.classifier.Classify(req.Question)
	ranked := s.ranker.Rank(ctx, profile, req.Question, req.PaperID, units)

	var history []models.ChatTurn
	if s.history != nil {
		if turns, err := s.history.ListTurns(ctx, sessionID); err == nil {
			history = Window(turns, s.window)
		}
	}

	promptText := prompt.Assemble(profile, ranked, history, meta)

	text, genErr := s.generate(ctx, req, sessionID, profile, promptText)
	if genErr != nil {
		return errorResponse(sessionID, fmt.Errorf("generation failed: %w", genErr))
	}

	now := time.Now().UTC()
	if s.history != nil {
		if err := s.history.AppendTurn(ctx, sessionID, models.ChatTurn{Role: models.RoleUser, Text: req.Question.RawText, Timestamp: now}); err != nil {
			log.Printf("append user turn failed session=%s err=%v", sessionID, err)
		}
		if err := s.history.AppendTurn(ctx, sessionID, models.ChatTurn{Role: models.RoleAssistant, Text: text, Timestamp: now}); err != nil {
			log.Printf("append assistant turn failed session=%s err=%v", sessionID, err)
		}
	}

	return models.ChatResponse{
		SessionID:       sessionID,
		Response:        text,
		ContextMetadata: countKinds(ranked),
		Timestamp:       now,
		Success:         true,
	}
}

// generate walks the preferred provider order until one returns usable text,
// auditing every attempt.
func (s *Service) generate(ctx context.Context, req Request, sessionID string, profile models.QueryProfile, promptText string) (string, error) {
	genReq := providers.GenerateRequest{
		Operation:   "chat_answer",
		Prompt:      promptText,
		Temperature: profile.GenerationParams.Temperature,
		MaxTokens:   profile.GenerationParams.MaxTokens,
	}
	var lastErr error
	for _, idx := range s.providers.PreferredOrder() {
		p, ref := s.providers.ProviderByIndex(idx)
		resp, info, err := p.Generate(ctx, genReq)
		s.logCall(ctx, req, sessionID, ref, info, err)
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			return strings.TrimSpace(resp.Text), nil
		}
		if err == nil {
			err = fmt.Errorf("provider %s returned empty text", ref.Name)
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no providers configured")
	}
	return "", lastErr
}

func (s *Service) logCall(ctx context.Context, req Request, sessionID string, ref providers.ProviderRef, info providers.ProviderInfo, err error) {
	if s.audit == nil {
		return
	}
	rec := storage.ModelCallRecord{
		Operation:    "chat_answer",
		PaperID:      req.PaperID,
		SessionID:    sessionID,
		ProviderName: ref.Name,
		Model:        info.Model,
		Status:       "ok",
	}
	if err != nil {
		rec.Status = "failed"
		rec.ErrorType = string(providers.ClassifyError(err))
	}
	if logErr := s.audit.LogCall(ctx, rec); logErr != nil {
		log.Printf("model call audit failed session=%s err=%v", sessionID, logErr)
	}
}

func countKinds(ranked []models.RankedUnit) models.ContextMetadata {
	var m models.ContextMetadata
	for _, ru := range ranked {
		switch ru.Unit.Kind {
		case models.KindSection, models.KindParagraph:
			m.SectionsUsed++
		case models.KindFigure:
			m.FiguresUsed++
		case models.KindTable:
			m.TablesUsed++
		case models.KindEquation:
			m.EquationsUsed++
		}
	}
	return m
}

func errorResponse(sessionID string, err error) models.ChatResponse {
	return models.ChatResponse{
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Success:   false,
		Error:     err.Error(),
	}
}
