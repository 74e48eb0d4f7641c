package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"firerisk/internal/llm"
	"firerisk/internal/utils"
	"firerisk/pkg/types"
)

func findingsSchema() *llm.JSONSchema {
	severities := make([]string, len(types.Severities))
	for i, s := range types.Severities {
		severities[i] = string(s)
	}

	return &llm.JSONSchema{
		Name:   "findings_extraction",
		Strict: true,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"findings": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"category":           map[string]any{"type": "string"},
							"title":              map[string]any{"type": "string"},
							"description":        map[string]any{"type": "string"},
							"severity":           map[string]any{"type": "string", "enum": severities},
							"recommendedAction":  map[string]any{"type": "string"},
							"standardsReference": map[string]any{"type": "string"},
						},
						"required":             []string{"category", "title", "description", "severity", "recommendedAction", "standardsReference"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []string{"findings"},
			"additionalProperties": false,
		},
	}
}

type extractedFinding struct {
	Category           string         `json:"category"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Severity           types.Severity `json:"severity"`
	RecommendedAction  string         `json:"recommendedAction"`
	StandardsReference string         `json:"standardsReference"`
}

type extraction struct {
	Findings *[]extractedFinding `json:"findings"`
}

// parseExtraction decodes and validates the extraction reply against the same
// rules the schema states. Any violation rejects the whole batch.
func parseExtraction(content string) ([]extractedFinding, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", types.ErrMalformedExtraction)
	}

	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()

	var out extraction
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrMalformedExtraction, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", types.ErrMalformedExtraction)
	}
	if out.Findings == nil {
		return nil, fmt.Errorf("%w: missing findings", types.ErrMalformedExtraction)
	}

	for i, f := range *out.Findings {
		if strings.TrimSpace(f.Category) == "" || strings.TrimSpace(f.Title) == "" {
			return nil, fmt.Errorf("%w: finding %d missing category or title", types.ErrMalformedExtraction, i)
		}
		if !f.Severity.Valid() {
			return nil, fmt.Errorf("%w: finding %d has unknown severity %q", types.ErrMalformedExtraction, i, f.Severity)
		}
	}

	return *out.Findings, nil
}

// ExtractFindings asks the provider for structured findings in reply and
// persists each one as an open finding. It returns how many rows were written,
// which may be non-zero alongside an error if persistence fails part way.
func (p *Pipeline) ExtractFindings(ctx context.Context, assessmentID int64, reply string) (int, error) {
	resp, err := p.llm.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: extractionSystemPrompt},
			{Role: llm.RoleUser, Content: extractionPrompt(reply)},
		},
		Schema: findingsSchema(),
	})
	if err != nil {
		return 0, fmt.Errorf("extraction call: %w", err)
	}

	extracted, err := parseExtraction(resp.Content)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, f := range extracted {
		finding := &types.Finding{
			AssessmentID:       assessmentID,
			Category:           strings.TrimSpace(f.Category),
			Title:              strings.TrimSpace(f.Title),
			Description:        utils.NilIfBlank(f.Description),
			Severity:           f.Severity,
			Status:             types.FindingStatusOpen,
			RecommendedAction:  utils.NilIfBlank(f.RecommendedAction),
			StandardsReference: utils.NilIfBlank(f.StandardsReference),
		}
		if err := p.findings.CreateFinding(ctx, finding); err != nil {
			return created, fmt.Errorf("persist extracted finding %q: %w", finding.Title, err)
		}
		created++
	}

	return created, nil
}

func isMalformed(err error) bool {
	return errors.Is(err, types.ErrMalformedExtraction)
}

func isExternal(err error) bool {
	return errors.Is(err, types.ErrExternalService)
}
