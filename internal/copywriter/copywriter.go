package copywriter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"salesdash/server/config"
	"salesdash/server/internal/models"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

var ErrUnknownModel = errors.New("unknown text model")

// DefaultModel is used when a request names no model.
const DefaultModel = "gemini-3-pro"

// textModels maps the keys the dashboard offers to Gemini model IDs.
var textModels = map[string]string{
	"gemini-3-pro":     "gemini-3-pro-preview",
	"gemini-2.5-pro":   "gemini-2.5-pro",
	"gemini-2.5-flash": "gemini-2.5-flash",
}

// Models lists the selectable model keys, sorted.
func Models() []string {
	keys := make([]string, 0, len(textModels))
	for k := range textModels {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ResolveModel maps a dashboard model key to the API model ID. An empty
// key selects DefaultModel.
func ResolveModel(key string) (string, error) {
	if key == "" {
		key = DefaultModel
	}
	id, ok := textModels[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownModel, key)
	}
	return id, nil
}

// Generator writes sales copy for one listing.
type Generator interface {
	Generate(ctx context.Context, p *models.Property, model string) (string, error)
}

// contentGenerator is the slice of *genai.Models the generator calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiGenerator struct {
	models       contentGenerator
	defaultModel string
	timeout      time.Duration
	logger       *logrus.Logger
}

// NewGeminiGenerator connects to the Gemini API with the configured key.
func NewGeminiGenerator(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*GeminiGenerator, error) {
	if cfg.AI.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	if _, err := ResolveModel(cfg.AI.DefaultModel); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.AI.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newGenerator(client.Models, cfg.AI.DefaultModel, cfg.AI.Timeout, logger), nil
}

func newGenerator(m contentGenerator, defaultModel string, timeout time.Duration, logger *logrus.Logger) *GeminiGenerator {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	return &GeminiGenerator{
		models:       m,
		defaultModel: defaultModel,
		timeout:      timeout,
		logger:       logger,
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, p *models.Property, model string) (string, error) {
	if model == "" {
		model = g.defaultModel
	}
	id, err := ResolveModel(model)
	if err != nil {
		return "", err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, id, genai.Text(BuildPrompt(p)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.8),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate copy: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("model returned no text")
	}

	g.logger.WithFields(logrus.Fields{
		"model":    id,
		"url":      p.URL,
		"duration": time.Since(start).String(),
		"chars":    len([]rune(text)),
	}).Info("Generated sales copy")
	return text, nil
}
