package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/store"
)

const hitWindow = 30 * 24 * time.Hour

// loadDirectives reads every active directive once per filter run. A failure
// here fails the enclosing step.
func (e *Engine) loadDirectives(ctx context.Context) ([]model.Directive, error) {
	docs, err := e.Store.FindMany(ctx, store.CollDirectives, store.Filter{"active": true}, 0)
	if err != nil {
		return nil, fmt.Errorf("load directives: %w", err)
	}

	directives := make([]model.Directive, 0, len(docs))
	for _, doc := range docs {
		directives = append(directives, model.Directive{
			ID:              store.ID(doc),
			Rule:            store.Str(doc, "rule"),
			Active:          true,
			DestinationTags: store.Strs(doc, "destinationTags"),
			ContentTypeTags: store.Strs(doc, "contentTypeTags"),
			TopicTags:       store.Strs(doc, "topicTags"),
			RecentHits:      parseHits(doc["recentHits"]),
		})
	}
	return directives, nil
}

// matchesDirective applies AND-across-declared-dimensions: a dimension with
// no tags is undeclared and ignored; a directive with no declared dimensions
// never filters anything.
func matchesDirective(d model.Directive, c model.RawCandidate) bool {
	declared := false

	if tags := nonEmpty(d.DestinationTags); len(tags) > 0 {
		declared = true
		if !anyDestinationMatch(tags, c.TargetDestinations) {
			return false
		}
	}
	if tags := nonEmpty(d.ContentTypeTags); len(tags) > 0 {
		declared = true
		if !anyContentTypeMatch(tags, c.ContentType) {
			return false
		}
	}
	if tags := nonEmpty(d.TopicTags); len(tags) > 0 {
		declared = true
		if !anyTopicMatch(tags, c.Title+" "+c.BriefSummary) {
			return false
		}
	}

	return declared
}

func anyDestinationMatch(tags, destinations []string) bool {
	for _, tag := range tags {
		lowTag := strings.ToLower(tag)
		for _, dest := range destinations {
			if strings.Contains(strings.ToLower(dest), lowTag) {
				return true
			}
		}
	}
	return false
}

func anyContentTypeMatch(tags []string, contentType string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, contentType) {
			return true
		}
	}
	return false
}

func anyTopicMatch(tags []string, text string) bool {
	lowText := strings.ToLower(text)
	for _, tag := range tags {
		if strings.Contains(lowText, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}

func nonEmpty(tags []string) []string {
	out := tags[:0:0]
	for _, t := range tags {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}

// recordHit prunes the directive's rolling 30-day hit window, appends the new
// hit, and writes the window back. Best-effort: a failure is logged and
// ignored, the filter verdict is already made.
func (e *Engine) recordHit(ctx context.Context, d model.Directive) {
	now := time.Now().UTC()
	cutoff := now.Add(-hitWindow)

	hits := make([]string, 0, len(d.RecentHits)+1)
	for _, h := range d.RecentHits {
		if h.After(cutoff) {
			hits = append(hits, h.Format(time.RFC3339))
		}
	}
	hits = append(hits, now.Format(time.RFC3339))

	if _, err := e.Store.Update(ctx, store.CollDirectives, d.ID, store.Document{"recentHits": hits}); err != nil {
		e.Log.Warn("directive hit counter update failed", zap.String("directive", d.ID), zap.Error(err))
	}
}

func parseHits(raw interface{}) []time.Time {
	items, ok := raw.([]interface{})
	if !ok {
		if strs, ok := raw.([]string); ok {
			items = make([]interface{}, len(strs))
			for i, s := range strs {
				items[i] = s
			}
		} else {
			return nil
		}
	}

	hits := make([]time.Time, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case time.Time:
			hits = append(hits, v)
		case string:
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				hits = append(hits, t)
			}
		}
	}
	return hits
}
