package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdlm/content-bot/internal/config"
	"github.com/tdlm/content-bot/internal/domain"
	"github.com/tdlm/content-bot/internal/logger"
	"github.com/tdlm/content-bot/internal/retry"
)

type fakeCompleter struct {
	content  string
	err      error
	requests []openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func testClient(api chatCompleter) *Client {
	return &Client{
		api:     api,
		model:   "gpt-4o-mini",
		cta:     "CTA Abogados: https://example.com/abogados/",
		backoff: retry.Config{MaxAttempts: 2, Sleep: func(context.Context, time.Duration) error { return nil }},
		log:     logger.NewNopLogger(),
	}
}

func TestGenerateParsesJSONResponse(t *testing.T) {
	api := &fakeCompleter{content: `{"title":"T","excerpt":"E","html":"<p>H</p>"}`}

	post, err := testClient(api).Generate(context.Background(), "Vacaciones", "prima", nil)

	require.NoError(t, err)
	assert.Equal(t, domain.GeneratedPost{Title: "T", Excerpt: "E", HTML: "<p>H</p>"}, post)
}

func TestGenerateFallbackForProse(t *testing.T) {
	api := &fakeCompleter{content: "hello world"}

	post, err := testClient(api).Generate(context.Background(), "Despido injustificado", "", nil)

	require.NoError(t, err)
	assert.Equal(t, "Despido injustificado", post.Title)
	assert.Equal(t, fallbackExcerpt, post.Excerpt)
	assert.Equal(t, "<p>hello world</p>", post.HTML)
}

func TestGeneratePropagatesAPIError(t *testing.T) {
	api := &fakeCompleter{err: errors.New("rate limited")}

	_, err := testClient(api).Generate(context.Background(), "Tema", "", nil)

	require.Error(t, err)
	// Two attempts: the failure was retried before propagating.
	assert.Len(t, api.requests, 2)
}

func TestGenerateEmbedsKnowledgeInPrompt(t *testing.T) {
	api := &fakeCompleter{content: `{"title":"T","excerpt":"E","html":"<p>H</p>"}`}
	picked := []domain.KnowledgeEntry{
		{Title: "Aguinaldo", Content: "Artículo 87 LFT", Source: "LFT"},
	}

	_, err := testClient(api).Generate(context.Background(), "Aguinaldo", "aguinaldo", picked)

	require.NoError(t, err)
	require.Len(t, api.requests, 1)
	req := api.requests[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, systemPrompt, req.Messages[0].Content)

	user := req.Messages[1].Content
	assert.Contains(t, user, "TEMA: Aguinaldo")
	assert.Contains(t, user, "TEMA_BASE: Aguinaldo")
	assert.Contains(t, user, "CONTENIDO_LEGAL: Artículo 87 LFT")
	assert.Contains(t, user, "FUENTE: LFT")
	assert.Contains(t, user, "CTA Abogados: https://example.com/abogados/")
}

func TestNewPrefersWhatsAppCTA(t *testing.T) {
	cfg := &config.Config{
		CTAWhatsApp:   "https://wa.me/5215500000000",
		CTALawyersURL: "https://example.com/abogados/",
	}

	c := New(cfg, logger.NewNopLogger())
	assert.Equal(t, "CTA WhatsApp: https://wa.me/5215500000000", c.cta)
}

func TestParsePost(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		topic string
		want  domain.GeneratedPost
	}{
		{
			name:  "valid object",
			raw:   `{"title":"A","excerpt":"B","html":"C"}`,
			topic: "tema",
			want:  domain.GeneratedPost{Title: "A", Excerpt: "B", HTML: "C"},
		},
		{
			name:  "prose falls back",
			raw:   "no soy JSON",
			topic: "tema",
			want:  domain.GeneratedPost{Title: "tema", Excerpt: fallbackExcerpt, HTML: "<p>no soy JSON</p>"},
		},
		{
			name:  "broken object falls back",
			raw:   `{"title": `,
			topic: "tema",
			want:  domain.GeneratedPost{Title: "tema", Excerpt: fallbackExcerpt, HTML: `<p>{"title": </p>`},
		},
		{
			name:  "long topic truncated to 120 runes",
			raw:   "x",
			topic: strings.Repeat("á", 150),
			want: domain.GeneratedPost{
				Title:   strings.Repeat("á", 120),
				Excerpt: fallbackExcerpt,
				HTML:    "<p>x</p>",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePost(tt.raw, tt.topic))
		})
	}
}
