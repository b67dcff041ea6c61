package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/vkrec/recommend-bot/internal/models"
)

// GPTClassifier scores the category taxonomy against a document batch with
// a single chat completion call.
type GPTClassifier struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewGPTClassifier(apiKey string, model string, maxTokens int, temperature float64, logger *zap.Logger) *GPTClassifier {
	return &GPTClassifier{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (c *GPTClassifier) Classify(ctx context.Context, docs []string) ([]Prediction, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(`Each document below is the recent wall content of one social network community.
Score how strongly the overall batch matches each of these categories:
%s

Return ONLY a JSON array ordered by descending score, one object per category:
[{"category": "name", "score": 0.0}]

Documents:
%s`,
		strings.Join(models.Taxonomy, ", "),
		numberedDocs(docs))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: float32(c.temperature),
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a text classifier. Respond with valid JSON only, no explanations.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to classify batch: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("classification returned no choices")
	}

	predictions, err := parsePredictions(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Error("Failed to parse classifier response",
			zap.Error(err),
			zap.String("response", resp.Choices[0].Message.Content))
		return nil, err
	}

	return predictions, nil
}

func numberedDocs(docs []string) string {
	var b strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&b, "--- document %d ---\n%s\n", i+1, doc)
	}
	return b.String()
}

// parsePredictions decodes the model output, dropping categories outside
// the taxonomy and re-ranking by score. The sort is stable so the model's
// own order decides ties.
func parsePredictions(content string) ([]Prediction, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var raw []Prediction
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse predictions: %w", err)
	}

	known := make(map[string]struct{}, len(models.Taxonomy))
	for _, category := range models.Taxonomy {
		known[category] = struct{}{}
	}

	predictions := make([]Prediction, 0, len(raw))
	for _, p := range raw {
		p.Category = strings.ToLower(strings.TrimSpace(p.Category))
		if _, ok := known[p.Category]; ok {
			predictions = append(predictions, p)
		}
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Score > predictions[j].Score
	})

	return predictions, nil
}
