package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/pkg/gemini"
)

const (
	aiEndpointExplain = "explain"
	aiEndpointChat    = "chat"
	defaultLanguage   = "english"
)

const (
	greetingReply = "Hello! I am your EDUBUILD STEM Assistant. I'm currently running in 'Lab Simulation Mode'. How can I help you build something today? 🚀"
	questionReply = "That's a great scientific question! As a STEM assistant, I recommend exploring our 'Project Tools' on the left to find a specific experiment for your class level. Building hands-on projects is the best way to learn! 🔬✨"
	helpReply     = "I'm here to help you with your STEM projects! Try asking about gravity, electricity, or how to build a volcano. 🌋"
)

var (
	greetingWords = map[string]struct{}{"hi": {}, "hello": {}}
	questionWords = map[string]struct{}{"how": {}, "what": {}, "why": {}}
)

// TextGenerator produces model text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, model, systemInstruction, prompt string) (string, error)
}

// AIConfig configures the explain/chat gateway.
type AIConfig struct {
	Enabled       bool
	Model         string
	FallbackModel string
	Timeout       time.Duration
}

// AIService answers explain and chat requests through the upstream model and
// falls back to canned replies on any failure. It never returns an error.
type AIService struct {
	gen       TextGenerator
	cfg       AIConfig
	metrics   *MetricsService
	logger    *zap.Logger
	retryable func(error) bool
}

// NewAIService constructs an AIService. A nil generator or a disabled config
// serves canned replies only.
func NewAIService(gen TextGenerator, cfg AIConfig, metrics *MetricsService, logger *zap.Logger) *AIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &AIService{gen: gen, cfg: cfg, metrics: metrics, logger: logger, retryable: gemini.IsModelNotFound}
}

// Explain describes a project in three short points.
func (s *AIService) Explain(ctx context.Context, req dto.ExplainRequest) dto.ExplainResponse {
	start := time.Now()
	language := languageOrDefault(req.Language)
	prompt := fmt.Sprintf("Explain this STEM project simply in %s: %s. Description: %s. Materials: %s. Use 3 bullet points.",
		language, req.Title, req.Description, strings.Join(req.Materials, ", "))

	text, outcome := s.generate(ctx, aiEndpointExplain, "", prompt)
	if outcome == AIOutcomeFallback {
		text = cannedExplanation(req.Title, req.Materials)
	}
	s.metrics.ObserveAIRequest(aiEndpointExplain, outcome, time.Since(start))
	return dto.ExplainResponse{Explanation: text}
}

// Chat answers a single assistant message.
func (s *AIService) Chat(ctx context.Context, req dto.ChatRequest) dto.ChatResponse {
	start := time.Now()
	message := strings.TrimSpace(req.Message)
	system := fmt.Sprintf("You are a friendly STEM assistant for the EDUBUILD project. Keep answers short, encouraging, and use emojis. Respond in %s.",
		languageOrDefault(req.Language))

	text, outcome := "", AIOutcomeFallback
	if message != "" {
		text, outcome = s.generate(ctx, aiEndpointChat, system, "User: "+message)
	}
	if outcome == AIOutcomeFallback {
		text = CannedReply(message)
	}
	s.metrics.ObserveAIRequest(aiEndpointChat, outcome, time.Since(start))
	return dto.ChatResponse{Reply: text}
}

// generate tries the primary model and, when it reports the model missing,
// the secondary one. An empty text with AIOutcomeFallback means both failed
// or the gateway is disabled.
func (s *AIService) generate(ctx context.Context, endpoint, system, prompt string) (string, string) {
	if !s.cfg.Enabled || s.gen == nil {
		return "", AIOutcomeFallback
	}

	text, err := s.call(ctx, s.cfg.Model, system, prompt)
	if err == nil {
		return text, AIOutcomeUpstream
	}
	s.logger.Warn("ai upstream failed", zap.String("endpoint", endpoint), zap.String("model", s.cfg.Model), zap.Error(err))

	secondary := s.cfg.FallbackModel
	if secondary == "" || secondary == s.cfg.Model || !s.retryable(err) || ctx.Err() != nil {
		return "", AIOutcomeFallback
	}
	text, err = s.call(ctx, secondary, system, prompt)
	if err == nil {
		return text, AIOutcomeSecondary
	}
	s.logger.Warn("ai secondary model failed", zap.String("endpoint", endpoint), zap.String("model", secondary), zap.Error(err))
	return "", AIOutcomeFallback
}

func (s *AIService) call(ctx context.Context, model, system, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	text, err := s.gen.Generate(callCtx, model, system, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", gemini.ErrEmptyResponse
	}
	return text, nil
}

// CannedReply picks a fixed reply by matching whole words in message.
// Greetings win over question words.
func CannedReply(message string) string {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	var question bool
	for _, w := range words {
		if _, ok := greetingWords[w]; ok {
			return greetingReply
		}
		if _, ok := questionWords[w]; ok {
			question = true
		}
	}
	if question {
		return questionReply
	}
	return helpReply
}

func cannedExplanation(title string, materials []string) string {
	first := "materials"
	if len(materials) > 0 && strings.TrimSpace(materials[0]) != "" {
		first = materials[0]
	}
	return fmt.Sprintf("🔬 **Lab Simulation Mode**\n\n1. 🧐 **What is this?**\nA hands-on science experiment called \"%s\".\n\n2. 🔭 **The Science**\nIt demonstrates basic physics/chemistry principles using everyday materials.\n\n3. 💡 **Pro-Tip**\nMake sure your %s are clean and ready before starting!", title, first)
}

func languageOrDefault(language string) string {
	if trimmed := strings.TrimSpace(language); trimmed != "" {
		return trimmed
	}
	return defaultLanguage
}
