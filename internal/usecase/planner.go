package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"mpasi-planner/internal/domain/entity"
	"mpasi-planner/internal/domain/repository"
)

// Planner is the end-to-end pipeline: query planning, two-step retrieval,
// prompt assembly, backend dispatch, response decoding. Each request is a
// stateless unit of work; the only shared state is the read-only vector
// store and the backend clients, both wired once at startup.
type Planner struct {
	retriever  *Retriever
	assembler  *Assembler
	dispatcher *Dispatcher
	decoder    *Decoder
	limiter    repository.RequestLimiter

	rulesLimit       uint64
	ingredientsLimit uint64
}

func NewPlanner(retriever *Retriever, assembler *Assembler, dispatcher *Dispatcher, decoder *Decoder, limiter repository.RequestLimiter) *Planner {
	return &Planner{
		retriever:        retriever,
		assembler:        assembler,
		dispatcher:       dispatcher,
		decoder:          decoder,
		limiter:          limiter,
		rulesLimit:       DefaultRulesLimit,
		ingredientsLimit: DefaultIngredientsLimit,
	}
}

// WithLimits overrides the per-step retrieval budgets.
func (p *Planner) WithLimits(rules, ingredients uint64) *Planner {
	p.rulesLimit = rules
	p.ingredientsLimit = ingredients
	return p
}

// GenerateMenu runs the full pipeline for one request. Cancellation is
// caller-driven: the context bounds both retrieval calls and the backend
// call.
func (p *Planner) GenerateMenu(ctx context.Context, clientID string, req entity.PlanRequest) (*entity.MenuResult, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	allowed, err := p.limiter.Allow(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("rate limiter check failed: %w", err)
	}
	if !allowed {
		return nil, entity.ErrRateLimitExceeded
	}

	prompt, report, err := p.buildPrompt(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, err := p.dispatcher.Generate(ctx, prompt, req.Backend)
	if err != nil {
		return nil, err
	}

	plan, err := p.decoder.Decode(raw)
	if err != nil {
		return nil, err
	}
	if len(plan.Warnings) > 0 {
		log.Printf("[PLANNER] plan accepted with %d defaulted fields", len(plan.Warnings))
	}

	// Usage bookkeeping must not delay or fail the response.
	go func() {
		if err := p.limiter.Increment(context.Background(), clientID); err != nil {
			log.Printf("[PLANNER] usage increment failed for %s: %v", clientID, err)
		}
	}()

	return &entity.MenuResult{
		Plan:    *plan,
		Report:  report,
		Backend: req.Backend,
		Model:   p.dispatcher.ModelFor(req.Backend),
	}, nil
}

// Search runs a single free-form retrieval against one category, the same
// step the pipeline runs per bundle. Inspection only.
func (p *Planner) Search(ctx context.Context, query, category string, limit uint64) (entity.ContextBundle, error) {
	if strings.TrimSpace(query) == "" {
		return entity.ContextBundle{}, fmt.Errorf("%w: search query must not be empty", entity.ErrInvalidRequest)
	}
	switch category {
	case entity.BundleRules, entity.BundleIngredients:
	default:
		return entity.ContextBundle{}, fmt.Errorf("%w: unknown category %q", entity.ErrInvalidRequest, category)
	}
	if limit == 0 {
		limit = DefaultRulesLimit
	}
	return p.retriever.Retrieve(ctx, query, category, limit)
}

// DebugPrompt runs the pipeline through assembly without touching a
// backend. Inspection only.
func (p *Planner) DebugPrompt(ctx context.Context, req entity.PlanRequest) (*entity.PromptPreview, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	prompt, report, err := p.buildPrompt(ctx, req)
	if err != nil {
		return nil, err
	}
	return &entity.PromptPreview{Prompt: prompt, Report: report}, nil
}

func (p *Planner) buildPrompt(ctx context.Context, req entity.PlanRequest) (entity.Prompt, entity.RetrievalReport, error) {
	rulesQuery, ingredientsQuery := PlanQueries(req)

	// The two retrieval steps are independent; run them in parallel.
	var rules, ingredients entity.ContextBundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rules, err = p.retriever.Retrieve(gctx, rulesQuery, entity.BundleRules, p.rulesLimit)
		return err
	})
	g.Go(func() error {
		var err error
		ingredients, err = p.retriever.Retrieve(gctx, ingredientsQuery, entity.BundleIngredients, p.ingredientsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return entity.Prompt{}, entity.RetrievalReport{}, err
	}

	prompt := p.assembler.Assemble(req, rules, ingredients)
	report := entity.RetrievalReport{
		RulesQuery:       rulesQuery,
		RulesCount:       len(rules.Documents),
		IngredientsQuery: ingredientsQuery,
		IngredientsCount: len(ingredients.Documents),
		PromptChars:      prompt.Chars(),
	}
	return prompt, report, nil
}
