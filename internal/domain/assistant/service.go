package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/lumee/internal/domain/conversation"
	"github.com/yanqian/lumee/internal/domain/profile"
	"github.com/yanqian/lumee/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/lumee/pkg/errors"
	"github.com/yanqian/lumee/pkg/metrics"
)

// Service answers weather questions in a conversation.
type Service interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Reset(ctx context.Context, sessionID string) error
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// TokenCounter estimates prompt tokens for history budgeting.
type TokenCounter interface {
	Count(text string) int
}

type service struct {
	cfg          Config
	client       ChatClient
	orchestrator *Orchestrator
	store        conversation.Store
	profiles     profile.Repository
	tokens       TokenCounter
	metrics      *metrics.Recorder
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
}

// NewService is a wire provider for the chat domain. profiles and tokens may be nil.
func NewService(
	cfg Config,
	client ChatClient,
	orchestrator *Orchestrator,
	store conversation.Store,
	profiles profile.Repository,
	tokens TokenCounter,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) Service {
	return &service{
		cfg:          cfg,
		client:       client,
		orchestrator: orchestrator,
		store:        store,
		profiles:     profiles,
		tokens:       tokens,
		metrics:      recorder,
		logger:       logger.With("component", "assistant.service"),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

func (s *service) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	input := strings.TrimSpace(req.UserInput)
	if input == "" {
		return ChatResponse{}, apperrors.Wrap("invalid_input", "userInput cannot be empty", nil)
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = s.newID()
	}

	lang := DetectLanguage(input)
	features := DetectFeatures(input)
	now := s.now()
	prof := s.loadProfile(ctx, req.UserID)
	history := s.historyMessages(ctx, sessionID)

	selectionMessages := make([]chatgpt.Message, 0, len(history)+2)
	selectionMessages = append(selectionMessages, chatgpt.Message{Role: "system", Content: toolSelectionPrompt(lang, now)})
	selectionMessages = append(selectionMessages, history...)
	selectionMessages = append(selectionMessages, chatgpt.Message{Role: "user", Content: input})

	selection, err := s.complete(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    selectionMessages,
		Temperature: s.cfg.Temperature,
		Tools:       ToolDefinitions(),
		ToolChoice:  "auto",
	})
	if err != nil {
		s.metrics.ChatRequest("llm_error")
		return ChatResponse{}, err
	}
	selected := selection.Choices[0].Message

	plan, skipped := planFromToolCalls(selected.ToolCalls)
	for _, skipErr := range skipped {
		s.logger.Warn("tool call skipped", "error", skipErr)
	}
	if len(plan) == 0 {
		if features.Empty() {
			reply := strings.TrimSpace(selected.Content)
			if reply == "" {
				reply = unknownInfoMessage(lang)
			}
			return s.finish(ctx, sessionID, input, ChatResponse{Reply: FormatReply(reply)}, "no_tool")
		}
		plan = planFromFeatures(features)
		s.logger.Info("llm selected no tool, using detected features", "features", features.List())
	}

	rc, err := s.orchestrator.Run(ctx, Input{
		Utterance: input,
		Language:  lang,
		Features:  features,
		Device:    req.Coords,
		Profile:   prof,
		Plan:      plan,
		Now:       now,
	})
	if err != nil {
		if apperrors.IsCode(err, CodeResolutionFailed) {
			s.logger.Info("location unresolved", "error", err)
			return s.finish(ctx, sessionID, input, ChatResponse{Reply: apperrors.MessageOf(err)}, "clarification")
		}
		s.metrics.ChatRequest("error")
		return ChatResponse{}, apperrors.Wrap("internal_error", "failed to prepare weather data", err)
	}

	if missing := requiredUnavailable(rc, features); len(missing) > 0 {
		return s.finish(ctx, sessionID, input, ChatResponse{Reply: unavailableMessage(missing, lang)}, "unavailable")
	}

	finalMessages := make([]chatgpt.Message, 0, len(history)+len(rc.Outputs)+3)
	finalMessages = append(finalMessages, chatgpt.Message{Role: "system", Content: finalPrompt(lang, prof, rc, features)})
	finalMessages = append(finalMessages, history...)
	finalMessages = append(finalMessages,
		chatgpt.Message{Role: "user", Content: input + "\n\n" + languageLock(lang)},
		assistantToolMessage(selected.Content, plan),
	)
	for _, out := range rc.Outputs {
		payload, err := json.Marshal(out.Payload)
		if err != nil {
			return ChatResponse{}, apperrors.Wrap("internal_error", "failed to encode tool output", err)
		}
		finalMessages = append(finalMessages, chatgpt.Message{Role: "tool", ToolCallID: out.CallID, Content: string(payload)})
	}

	final, err := s.complete(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    finalMessages,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.metrics.ChatRequest("llm_error")
		return ChatResponse{}, err
	}
	reply := FormatReply(final.Choices[0].Message.Content)
	if reply == "" {
		reply = unknownInfoMessage(lang)
	}
	s.logger.Debug("final reply generated", "reply", reply)

	resp := ChatResponse{Reply: reply}
	AttachGraph(&resp, rc, features)
	AttachAirSummary(&resp, rc, features, lang)
	return s.finish(ctx, sessionID, input, resp, "ok")
}

func (s *service) Reset(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return apperrors.Wrap("invalid_input", "session id cannot be empty", nil)
	}
	if err := s.store.Reset(ctx, sessionID); err != nil {
		return apperrors.Wrap("internal_error", "failed to reset conversation", err)
	}
	return nil
}

func (s *service) complete(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		s.logger.Warn("llm call failed", "error", err)
		return resp, apperrors.Wrap("llm_error", "chatgpt request failed", errors.New(chatgpt.ErrorMessage(err)))
	}
	if len(resp.Choices) == 0 {
		return resp, apperrors.Wrap("llm_error", "chatgpt returned no choices", nil)
	}
	s.metrics.Tokens(resp.Usage)
	return resp, nil
}

func (s *service) loadProfile(ctx context.Context, userID string) *profile.Profile {
	userID = strings.TrimSpace(userID)
	if userID == "" || s.profiles == nil {
		return nil
	}
	p, ok, err := s.profiles.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("profile lookup failed", "userId", userID, "error", apperrors.Wrap("profile_error", "profile unavailable", err))
		return nil
	}
	if !ok {
		return nil
	}
	return &p
}

func (s *service) historyMessages(ctx context.Context, sessionID string) []chatgpt.Message {
	turns, err := s.store.History(ctx, sessionID)
	if err != nil {
		s.logger.Warn("conversation history unavailable", "sessionId", sessionID, "error", err)
		return nil
	}
	turns = conversation.Window(turns, s.cfg.HistoryTokenBudget)
	messages := make([]chatgpt.Message, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role == conversation.RoleModel {
			role = "assistant"
		}
		messages = append(messages, chatgpt.Message{Role: role, Content: t.Text})
	}
	return messages
}

// finish persists the exchange and stamps the session id. Store failures
// never fail the reply.
func (s *service) finish(ctx context.Context, sessionID, input string, resp ChatResponse, outcome string) (ChatResponse, error) {
	resp.SessionID = sessionID
	now := s.now()
	err := s.store.Append(ctx, sessionID,
		conversation.Turn{Role: conversation.RoleUser, Text: input, Tokens: s.countTokens(input), At: now},
		conversation.Turn{Role: conversation.RoleModel, Text: resp.Reply, Tokens: s.countTokens(resp.Reply), At: now},
	)
	if err == nil && s.cfg.HistoryWindow > 0 {
		err = s.store.TrimToLast(ctx, sessionID, s.cfg.HistoryWindow)
	}
	if err != nil {
		s.logger.Warn("conversation not persisted", "sessionId", sessionID, "error", err)
	}
	s.metrics.ChatRequest(outcome)
	return resp, nil
}

func (s *service) countTokens(text string) int {
	if s.tokens == nil {
		return 0
	}
	return s.tokens.Count(text)
}

// requiredUnavailable returns the domains to apologize for. A general
// question apologizes only when nothing could be fetched; a specific question
// apologizes when every domain it needs is missing.
func requiredUnavailable(rc ResponseContext, features FeatureSet) []Domain {
	if features.Has(FeatureGeneral) || !features.Specific() {
		if rc.AllUnavailable() {
			return rc.Unavailable
		}
		return nil
	}
	var required []Domain
	for _, d := range features.Domains() {
		for _, r := range rc.Requested {
			if d == r {
				required = append(required, d)
			}
		}
	}
	if len(required) == 0 {
		return nil
	}
	for _, d := range required {
		if rc.available(d) {
			return nil
		}
	}
	return required
}
