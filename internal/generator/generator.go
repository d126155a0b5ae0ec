// Package generator composes the article prompt, calls the OpenAI chat
// completion API, and parses the structured result.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tdlm/content-bot/internal/config"
	"github.com/tdlm/content-bot/internal/domain"
	"github.com/tdlm/content-bot/internal/logger"
	"github.com/tdlm/content-bot/internal/retry"
)

const (
	// temperature keeps output varied but on-template.
	temperature = 0.5

	// maxFallbackTitleLength truncates the topic when it stands in for a
	// missing title.
	maxFallbackTitleLength = 120

	fallbackExcerpt = "Guía informativa y orientativa sobre tu situación laboral."
)

// chatCompleter is the slice of the OpenAI client the generator needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client generates blog posts grounded in knowledge entries.
type Client struct {
	api     chatCompleter
	model   string
	cta     string
	backoff retry.Config
	log     logger.Logger
}

// New builds a generator Client from the service configuration. The CTA line
// prefers the WhatsApp link when one is configured.
func New(cfg *config.Config, log logger.Logger) *Client {
	cta := "CTA Abogados: " + cfg.CTALawyersURL
	if cfg.CTAWhatsApp != "" {
		cta = "CTA WhatsApp: " + cfg.CTAWhatsApp
	}

	return &Client{
		api:     openai.NewClient(cfg.OpenAIKey),
		model:   cfg.OpenAIModel,
		cta:     cta,
		backoff: retry.DefaultConfig(),
		log:     log,
	}
}

// Generate produces a post for the topic, grounded in the picked knowledge
// entries. The remote call goes through the backoff executor; a response that
// is not the requested JSON shape is recovered locally via parsePost, so the
// caller always receives a usable post.
func (c *Client) Generate(ctx context.Context, topic, keywords string, picked []domain.KnowledgeEntry) (domain.GeneratedPost, error) {
	prompt := composePrompt(topic, keywords, picked, c.cta)

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := retry.DoValue(ctx, c.backoff, func() (openai.ChatCompletionResponse, error) {
		return c.api.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return domain.GeneratedPost{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.GeneratedPost{}, fmt.Errorf("chat completion returned no choices")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	post := parsePost(raw, topic)
	if post.Title == "" && post.HTML == "" {
		c.log.Warn("generation produced an empty post", logger.String("topic", topic))
	}
	return post, nil
}

// parsePost decodes the model output. When the output is not a JSON object,
// it synthesizes a result from the topic and the raw text instead of failing:
// the run must not abort just because the model answered in prose.
func parsePost(raw, topic string) domain.GeneratedPost {
	if strings.HasPrefix(raw, "{") {
		var post domain.GeneratedPost
		if err := json.Unmarshal([]byte(raw), &post); err == nil {
			return post
		}
	}

	return domain.GeneratedPost{
		Title:   truncateRunes(topic, maxFallbackTitleLength),
		Excerpt: fallbackExcerpt,
		HTML:    "<p>" + raw + "</p>",
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
