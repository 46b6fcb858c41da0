package filter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/semantic"
	"github.com/atlastrail/cascade/internal/store"
)

// Engine rejects candidates that match an active editorial directive, are
// near-duplicates of existing content, or collide with an existing project
// title. Checks run in that order, short-circuiting on the first failure.
type Engine struct {
	Store  store.Store
	Search semantic.Searcher
	// Threshold is the similarity score a top match must strictly exceed to
	// reject a candidate as a duplicate.
	Threshold float64
	TopK      int
	Log       *zap.Logger
}

func NewEngine(s store.Store, search semantic.Searcher, threshold float64, topK int, log *zap.Logger) *Engine {
	if threshold == 0 {
		threshold = 0.85
	}
	if topK <= 0 {
		topK = 5
	}
	return &Engine{Store: s, Search: search, Threshold: threshold, TopK: topK, Log: log}
}

func (e *Engine) Filter(ctx context.Context, candidates []model.RawCandidate) ([]model.FilteredCandidate, error) {
	directives, err := e.loadDirectives(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]model.FilteredCandidate, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, e.filterOne(ctx, c, directives))
	}
	return results, nil
}

func (e *Engine) filterOne(ctx context.Context, c model.RawCandidate, directives []model.Directive) model.FilteredCandidate {
	fc := model.FilteredCandidate{RawCandidate: c, Passed: true}

	// 1. Directive match: first matching directive wins.
	for _, d := range directives {
		if matchesDirective(d, c) {
			fc.Passed = false
			fc.FilterReason = d.Rule
			fc.MatchedDirectives = []string{d.ID}
			e.recordHit(ctx, d)
			return fc
		}
	}

	// 2. Semantic duplicate check. A search failure skips the check rather
	// than rejecting the candidate.
	query := c.Title + " " + c.BriefSummary
	matches, err := e.Search.Search(ctx, query, semantic.Options{TopK: e.TopK})
	if err != nil {
		e.Log.Warn("similarity search failed, skipping duplicate check",
			zap.String("title", c.Title), zap.Error(err))
	} else if len(matches) > 0 {
		top := matches[0]
		fc.DuplicateScore = top.Score
		if top.Score > e.Threshold {
			fc.Passed = false
			fc.FilterReason = fmt.Sprintf("near-duplicate of existing content: %q (score %.3f)", snippet(top.Text, 80), top.Score)
			return fc
		}
	}

	// 3. Existing-project check: an exact title collision with any
	// non-filtered project blocks the candidate.
	projects, err := e.Store.FindMany(ctx, store.CollContentProjects, store.Filter{"title": c.Title}, 10)
	if err != nil {
		e.Log.Warn("existing-project check failed", zap.String("title", c.Title), zap.Error(err))
		return fc
	}
	for _, p := range projects {
		if store.Str(p, "stage") != "filtered" {
			fc.Passed = false
			fc.FilterReason = "a content project with this title already exists"
			return fc
		}
	}

	return fc
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
