package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qdoctor/agent/internal/config"
	"github.com/qdoctor/agent/internal/core"
	"github.com/qdoctor/agent/pkg/log"
	"github.com/qdoctor/agent/pkg/retry"
)

// Orchestrator runs a query through the full answer pipeline:
// cache lookup, retrieval, input validation, generation with a scored
// self-correction loop, output validation, cache write.
//
// All per-request state lives on the stack; the only shared state is the
// cache store, which is safe for concurrent use.
type Orchestrator struct {
	cache       core.CacheStore
	retriever   core.Retriever
	inputGuard  core.InputGuard
	generator   core.Generator
	scorer      core.Scorer
	outputGuard core.OutputGuard

	threshold  float64
	maxRetries int

	// genSlots caps concurrent generation. A full channel rejects the
	// request with ErrOverloaded instead of queueing.
	genSlots chan struct{}

	retrier *retry.Retrier
	now     func() time.Time
}

type Deps struct {
	Cache       core.CacheStore
	Retriever   core.Retriever
	InputGuard  core.InputGuard
	Generator   core.Generator
	Scorer      core.Scorer
	OutputGuard core.OutputGuard
}

func New(deps Deps, scorerCfg *config.ScorerConfig, maxConcurrent int) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	retryCfg := retry.NewDefaultConfig()
	retryCfg.Retryable = func(err error) bool {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}

	return &Orchestrator{
		cache:       deps.Cache,
		retriever:   deps.Retriever,
		inputGuard:  deps.InputGuard,
		generator:   deps.Generator,
		scorer:      deps.Scorer,
		outputGuard: deps.OutputGuard,
		threshold:   scorerCfg.Threshold,
		maxRetries:  scorerCfg.MaxRetries,
		genSlots:    make(chan struct{}, maxConcurrent),
		retrier:     retry.NewRetrier(retryCfg),
		now:         time.Now,
	}
}

// Handle answers one query. Guardrail rejections and coverage gaps come back
// as designed failures with fixed user-visible text; only infrastructure
// problems surface as hard errors.
func (o *Orchestrator) Handle(ctx context.Context, q core.Query) (core.FinalResponse, error) {
	logger := log.FromCtx(ctx)

	text := strings.TrimSpace(q.Text)
	if text == "" {
		return core.FinalResponse{}, core.StageError("validate", fmt.Errorf("%w: empty query", core.ErrClient))
	}

	key := core.CacheKey(text)

	// Exactly one cache read per request. An unavailable cache is a miss.
	if cached, ok, err := o.cache.Get(ctx, key); err != nil {
		logger.Warn().Err(err).Msg("cache read failed, treating as miss")
	} else if ok {
		logger.Debug().Str("key", key).Msg("cache hit")
		return cached, nil
	}

	chunks, err := o.retrieveWithRetry(ctx, text)
	if err != nil {
		return core.FinalResponse{}, core.StageError("retrieve", err)
	}

	// No relevant context is a designed outcome and is never cached.
	if len(chunks) == 0 {
		logger.Debug().Msg("no relevant context found")
		return core.FinalResponse{
			Text:      core.MsgInsufficientContext,
			Valid:     true,
			CreatedAt: o.now().UTC(),
		}, nil
	}

	verdict := o.inputGuard.Validate(text)
	if !verdict.Safe {
		logger.Warn().Str("reason", verdict.Reason).Msg("input rejected by guardrail")
		return core.FinalResponse{}, core.StageError("input_guard", fmt.Errorf("%w: %s", core.ErrValidationRejected, verdict.Reason))
	}
	sanitized := core.SanitizedQuery{
		Query:    q,
		Text:     verdict.Text,
		Redacted: verdict.Redacted,
	}

	select {
	case o.genSlots <- struct{}{}:
		defer func() { <-o.genSlots }()
	default:
		return core.FinalResponse{}, core.StageError("generate", core.ErrOverloaded)
	}

	draft, err := o.generateScored(ctx, sanitized, chunks)
	if err != nil {
		return core.FinalResponse{}, core.StageError("generate", err)
	}

	outVerdict := o.outputGuard.Validate(draft.Text, chunks)
	if !outVerdict.Valid {
		// The fallback replaces the draft and is never cached.
		logger.Warn().Str("reason", outVerdict.Reason).Msg("draft rejected by output guardrail")
		return core.FinalResponse{
			Text:      outVerdict.Text,
			Valid:     false,
			CreatedAt: o.now().UTC(),
		}, nil
	}

	resp := core.FinalResponse{
		Text:      outVerdict.Text,
		Sources:   draft.Included,
		Valid:     true,
		Cacheable: true,
		CreatedAt: o.now().UTC(),
	}

	// Cancelled work must not poison the cache.
	if ctx.Err() == nil {
		if err := o.cache.Set(ctx, key, resp); err != nil {
			logger.Warn().Err(err).Msg("cache write failed")
		}
	}

	return resp, nil
}

// retrieveWithRetry re-runs the retrieval read once on transient failure.
func (o *Orchestrator) retrieveWithRetry(ctx context.Context, text string) ([]core.ContextChunk, error) {
	var chunks []core.ContextChunk
	err := o.retrier.Do(ctx, func() error {
		var opErr error
		chunks, opErr = o.retriever.Retrieve(ctx, text)
		return opErr
	})
	return chunks, err
}

// generateScored runs the generate/score loop. The draft with the best score
// so far is kept; the loop performs at most 1+maxRetries generation calls.
func (o *Orchestrator) generateScored(ctx context.Context, q core.SanitizedQuery, chunks []core.ContextChunk) (core.Draft, error) {
	logger := log.FromCtx(ctx)

	var best core.Draft
	feedback := ""

	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		draft, err := o.generator.Generate(ctx, q, chunks, feedback)
		if err != nil {
			return core.Draft{}, err
		}

		draft.Attempt = attempt
		draft.Consistency = o.scorer.Score(draft, chunks)

		logger.Debug().
			Int("attempt", attempt).
			Float64("consistency", draft.Consistency).
			Msg("draft scored")

		if attempt == 0 || draft.Consistency > best.Consistency {
			best = draft
		}
		if best.Consistency >= o.threshold {
			return best, nil
		}

		feedback = fmt.Sprintf(
			"the draft scored %.2f for consistency with the context, below the %.2f threshold; remove statements the context does not support",
			draft.Consistency, o.threshold,
		)
	}

	// Budget exhausted. The best draft still goes through the output guard.
	return best, nil
}
