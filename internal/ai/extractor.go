// Package ai extracts vehicle variants by sending document text to an
// Anthropic model and parsing its structured reply. Large documents are
// chunked and processed sequentially under a request rate limit.
package ai

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leasingborsen/pricelist-cli/internal/model"
	"github.com/leasingborsen/pricelist-cli/internal/resilience"
	"github.com/leasingborsen/pricelist-cli/pkg/anthropic"
)

// Options configures one extractor instance.
type Options struct {
	Model          string
	MaxTokens      int64
	MaxAttempts    int
	RequestTimeout time.Duration
	// RequestsPerSecond throttles chunked extraction. Zero means 1 rps.
	RequestsPerSecond float64
}

// Result is one AI pass over a document.
type Result struct {
	Candidates   []model.CandidateVariant
	Usage        model.TokenUsage
	CostCents    int
	Chunks       int
	FailedChunks int
}

// Extractor drives the model calls for one or more documents.
type Extractor struct {
	client  anthropic.Client
	opts    Options
	limiter *rate.Limiter
}

// NewExtractor builds an extractor. Zero-valued options get defaults
// suitable for price-list documents.
func NewExtractor(client anthropic.Client, opts Options) *Extractor {
	if opts.Model == "" {
		opts.Model = "claude-haiku-4-5-20251001"
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 8192
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 2 * time.Minute
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Extractor{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Extract runs the document through the model. Documents above the
// direct-size threshold are chunked; a failed chunk contributes zero
// vehicles and the rest still count.
func (e *Extractor) Extract(ctx context.Context, doc model.Document) (Result, error) {
	if doc.Empty() {
		return Result{}, resilience.NewValidation("ai: empty document")
	}

	chunks := chunkDocument(doc.Text)
	result := Result{Chunks: len(chunks)}

	if len(chunks) == 1 {
		candidates, usage, err := e.extractChunk(ctx, doc.DealerHint, chunks[0])
		if err != nil {
			return Result{Chunks: 1, FailedChunks: 1}, err
		}
		result.Candidates = candidates
		result.Usage = usage
		result.CostCents = costCents(usage, e.opts.Model)
		return result, nil
	}

	byKey := make(map[model.VariantKey]int)
	for i, chunk := range chunks {
		if err := e.limiter.Wait(ctx); err != nil {
			return result, resilience.NewTimeout(eris.Wrap(err, "ai: rate limit wait"))
		}

		candidates, usage, err := e.extractChunk(ctx, doc.DealerHint, chunk)
		result.Usage.Add(usage)
		if err != nil {
			if ctx.Err() != nil {
				result.CostCents = costCents(result.Usage, e.opts.Model)
				return result, resilience.NewTimeout(eris.Wrap(ctx.Err(), "ai: chunked extraction"))
			}
			result.FailedChunks++
			zap.L().Warn("chunk extraction failed",
				zap.Int("chunk", i),
				zap.Int("total_chunks", len(chunks)),
				zap.Error(err))
			continue
		}

		for _, c := range candidates {
			if idx, ok := byKey[c.Key()]; ok {
				merged := result.Candidates[idx]
				merged.PricingOptions = unionPricing(merged.PricingOptions, c.PricingOptions)
				result.Candidates[idx] = merged
				continue
			}
			byKey[c.Key()] = len(result.Candidates)
			result.Candidates = append(result.Candidates, c)
		}
	}

	result.CostCents = costCents(result.Usage, e.opts.Model)
	if result.FailedChunks == result.Chunks {
		return result, resilience.NewProvider(eris.New("ai: every chunk failed"), false)
	}
	return result, nil
}

// extractChunk sends one request with retries and parses the reply.
func (e *Extractor) extractChunk(ctx context.Context, dealerHint, chunk string) ([]model.CandidateVariant, model.TokenUsage, error) {
	var usage model.TokenUsage

	candidates, err := resilience.DoVal(ctx, e.opts.MaxAttempts, "ai extract",
		func(ctx context.Context) ([]model.CandidateVariant, error) {
			reqCtx, cancel := context.WithTimeout(ctx, e.opts.RequestTimeout)
			defer cancel()

			resp, err := e.client.CreateMessage(reqCtx, anthropic.MessageRequest{
				Model:     e.opts.Model,
				MaxTokens: e.opts.MaxTokens,
				System:    systemPrompt,
				Messages:  []anthropic.Message{{Role: "user", Content: userPrompt(dealerHint, chunk)}},
			})
			if err != nil {
				return nil, classify(err)
			}

			usage.Add(model.TokenUsage{
				InputTokens:  int(resp.Usage.InputTokens),
				OutputTokens: int(resp.Usage.OutputTokens),
			})
			resp.Usage.LogCost(e.opts.Model, "extract")

			return parseVehicles(resp.Text())
		})

	return candidates, usage, err
}

// classify maps a raw client error into the retry taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return resilience.NewTimeout(err)
	case resilience.LooksRateLimited(err):
		return resilience.NewProvider(err, true)
	default:
		return resilience.NewProvider(err, false)
	}
}

func costCents(u model.TokenUsage, modelID string) int {
	return anthropic.TokenUsage{
		InputTokens:  int64(u.InputTokens),
		OutputTokens: int64(u.OutputTokens),
	}.EstimateCostCents(modelID)
}

// unionPricing merges option lists by the identity tuple, first wins.
func unionPricing(a, b []model.PricingOption) []model.PricingOption {
	seen := make(map[model.PricingKey]bool, len(a)+len(b))
	out := make([]model.PricingOption, 0, len(a)+len(b))
	for _, list := range [][]model.PricingOption{a, b} {
		for _, opt := range list {
			if seen[opt.Key()] {
				continue
			}
			seen[opt.Key()] = true
			out = append(out, opt)
		}
	}
	return out
}
