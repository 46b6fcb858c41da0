package ideate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/common"
	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/llm"
)

// AllowedContentTypes is the fixed schema vocabulary for generated
// candidates; anything else the model invents is dropped at validation.
var AllowedContentTypes = map[string]struct{}{
	"destination_guide":  {},
	"property_spotlight": {},
	"wildlife_story":     {},
	"seasonal_roundup":   {},
	"travel_tips":        {},
	"photo_essay":        {},
}

// DefaultPrompt is used when no template is configured. The two verbs are
// the candidate count and the itinerary context block.
const DefaultPrompt = `You are an editorial planner for a travel content studio.
Based on the itinerary context below, propose up to %d content ideas.

%s

Return ONLY a JSON object of the form:
{
  "candidates": [
    {
      "title": "...",
      "content_type": "destination_guide|property_spotlight|wildlife_story|seasonal_roundup|travel_tips|photo_essay",
      "brief_summary": "...",
      "target_destinations": ["..."],
      "target_properties": ["..."],
      "target_species": ["..."],
      "freshness": "evergreen|seasonal|timely"
    }
  ]
}`

type candidateList struct {
	Candidates []model.RawCandidate `json:"candidates"`
}

// Generator proposes content candidates from itinerary context via the
// language model and validates the structured response.
type Generator struct {
	LLM           llm.LLMClient
	Prompt        string
	MaxCandidates int
	Log           *zap.Logger
}

func NewGenerator(client llm.LLMClient, prompt string, maxCandidates int, log *zap.Logger) *Generator {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	if maxCandidates <= 0 {
		maxCandidates = 8
	}
	return &Generator{LLM: client, Prompt: prompt, MaxCandidates: maxCandidates, Log: log}
}

func (g *Generator) Generate(ctx context.Context, it *model.Itinerary, entities *model.ExtractedEntities) ([]model.RawCandidate, error) {
	prompt := fmt.Sprintf(g.Prompt, g.MaxCandidates, buildContext(it, entities))

	response, err := g.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate candidates: %w", err)
	}

	parsed, err := common.ParseJSON[candidateList](response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse candidates: %w", err)
	}

	candidates := make([]model.RawCandidate, 0, len(parsed.Candidates))
	for _, c := range parsed.Candidates {
		if err := validate(c); err != nil {
			g.Log.Warn("dropping invalid candidate", zap.String("title", c.Title), zap.Error(err))
			continue
		}
		c.ContentType = strings.ToLower(strings.TrimSpace(c.ContentType))
		candidates = append(candidates, c)
		if len(candidates) >= g.MaxCandidates {
			break
		}
	}
	return candidates, nil
}

func validate(c model.RawCandidate) error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("empty title")
	}
	ct := strings.ToLower(strings.TrimSpace(c.ContentType))
	if _, ok := AllowedContentTypes[ct]; !ok {
		return fmt.Errorf("unknown content type %q", c.ContentType)
	}
	if len(c.TargetDestinations) > 20 || len(c.TargetProperties) > 20 || len(c.TargetSpecies) > 20 {
		return fmt.Errorf("target list too long")
	}
	return nil
}

func buildContext(it *model.Itinerary, entities *model.ExtractedEntities) string {
	var b strings.Builder

	if it != nil && it.Name != "" {
		fmt.Fprintf(&b, "Itinerary: %s\n", it.Name)
	}
	if it != nil && it.Overview.Summary != "" {
		fmt.Fprintf(&b, "Overview: %s\n", it.Overview.Summary)
	}
	if entities == nil {
		return b.String()
	}

	if len(entities.Countries) > 0 {
		b.WriteString("Countries:\n")
		for _, c := range entities.Countries {
			fmt.Fprintf(&b, "- %s\n", c.Name)
		}
	}
	if len(entities.Locations) > 0 {
		b.WriteString("Destinations:\n")
		for _, l := range entities.Locations {
			fmt.Fprintf(&b, "- %s (%s)\n", l.Name, l.CountryName)
		}
	}
	if len(entities.Properties) > 0 {
		b.WriteString("Properties:\n")
		for _, p := range entities.Properties {
			fmt.Fprintf(&b, "- %s\n", p.Name)
		}
	}
	if len(entities.Activities) > 0 {
		b.WriteString("Notable activities:\n")
		for _, a := range entities.Activities {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}
	return b.String()
}
