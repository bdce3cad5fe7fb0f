package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/qdoctor/agent/internal/config"
	"github.com/qdoctor/agent/internal/core"
	"github.com/qdoctor/agent/pkg/log"
)

const systemPrompt = `You are QDoctor, a clinical information assistant.
Answer the question using ONLY the provided context documents.
If the context does not contain the answer, say that the provided documents do not cover the question.
Cite the source label of every document you used, in square brackets.
Do not give personal medical advice, diagnoses, or prescriptions.`

// clinicalKeywords route a query to the precise model profile.
var clinicalKeywords = []string{
	"treatment",
	"dosage",
	"dose",
	"diagnosis",
	"diagnose",
	"guideline",
	"contraindication",
	"interaction",
	"side effect",
	"medication",
	"prescription",
	"therapy plan",
}

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

func countTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(getTokenizer().Encode(text, nil, nil))
}

// Gateway turns a sanitized query plus retrieved context into a model draft.
// Prompt assembly is deterministic: same query, context and attempt always
// produce the same request.
type Gateway struct {
	model        core.ChatModel
	cfg          *config.GatewayConfig
	preciseModel string
	fastModel    string
	timeout      time.Duration
}

func New(model core.ChatModel, cfg *config.GatewayConfig, llmCfg *config.LLMConfig) *Gateway {
	return &Gateway{
		model:        model,
		cfg:          cfg,
		preciseModel: llmCfg.PreciseModel,
		fastModel:    llmCfg.FastModel,
		timeout:      llmCfg.Timeout,
	}
}

func (g *Gateway) Generate(ctx context.Context, q core.SanitizedQuery, chunks []core.ContextChunk, feedback string) (core.Draft, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	model, temperature := g.route(q.Text, feedback)
	contextBlock, included := g.buildContext(chunks)
	user := buildUserPrompt(contextBlock, q.Text, feedback)

	log.FromCtx(ctx).Debug().
		Str("model", model).
		Int("context_chunks", len(included)).
		Bool("regeneration", feedback != "").
		Msg("requesting completion")

	text, err := g.model.Complete(ctx, core.CompletionRequest{
		Model:       model,
		System:      systemPrompt,
		User:        user,
		Temperature: temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return core.Draft{}, err
	}

	return core.Draft{
		Text:     strings.TrimSpace(text),
		Context:  chunks,
		Included: included,
	}, nil
}

// route picks the model profile. Regenerations and clinically sensitive or
// long queries go to the precise profile, everything else to the fast one.
func (g *Gateway) route(queryText, feedback string) (model string, temperature float64) {
	if feedback != "" {
		return g.preciseModel, g.cfg.PreciseTemperature
	}

	lower := strings.ToLower(queryText)
	for _, kw := range clinicalKeywords {
		if strings.Contains(lower, kw) {
			return g.preciseModel, g.cfg.PreciseTemperature
		}
	}

	if countTokens(queryText) > g.cfg.RouteLengthTokens {
		return g.preciseModel, g.cfg.PreciseTemperature
	}
	return g.fastModel, g.cfg.FastTemperature
}

// buildContext formats chunks in rank order until the token budget is spent.
// The first chunk is always included so the model never sees an empty context
// when retrieval found something.
func (g *Gateway) buildContext(chunks []core.ContextChunk) (string, []string) {
	var b strings.Builder
	var included []string
	budget := g.cfg.ContextTokenBudget

	for i, chunk := range chunks {
		block := fmt.Sprintf("Source: %s\nContent: %s\n\n", chunk.Source, chunk.Text)

		cost := countTokens(block)
		if i > 0 && cost > budget {
			break
		}

		b.WriteString(block)
		budget -= cost
		included = append(included, chunk.Source)
	}

	return strings.TrimSpace(b.String()), included
}

func buildUserPrompt(contextBlock, question, feedback string) string {
	var b strings.Builder

	b.WriteString("Context documents:\n\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)

	if feedback != "" {
		b.WriteString("\n\nA previous draft of this answer was rejected: ")
		b.WriteString(feedback)
		b.WriteString("\nStay strictly within the context documents above.")
	}

	return b.String()
}
