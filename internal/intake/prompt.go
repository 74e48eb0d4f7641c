package intake

import (
	"encoding/json"
	"fmt"
	"strings"

	"firerisk/internal/utils"
	"firerisk/pkg/types"
)

const assistantRole = `Your role is to:
1. Ask targeted questions about fire hazards and protection measures
2. Provide expert guidance on fire safety requirements
3. Identify risks and suggest remedial actions
4. Reference relevant standards and regulations
5. Help fill out the assessment form systematically

Conduct the assessment in a conversational manner, asking one or two questions at a time. When you identify a finding, clearly state it with severity level (observation, minor, major, critical) and recommended actions.`

// SystemPrompt grounds the assistant in the building under review and the full
// set of reference standards.
func SystemPrompt(assessment *types.Assessment, standards []*types.FireStandard) string {
	var b strings.Builder

	b.WriteString("You are an expert fire risk assessment assistant helping conduct a UK Regulatory Reform Fire Safety Order 2005 assessment.\n\n")

	fmt.Fprintf(&b, "Building: %s\n", assessment.BuildingName)
	fmt.Fprintf(&b, "Type: %s\n", orUnspecified(assessment.BuildingType))
	fmt.Fprintf(&b, "Address: %s\n", orUnspecified(assessment.Address))
	fmt.Fprintf(&b, "Occupancy: %s\n", orUnspecified(assessment.OccupancyType))

	b.WriteString("\nRelevant Fire Safety Standards:\n")
	b.WriteString(StandardsText(standards))
	b.WriteString("\n\n")
	b.WriteString(assistantRole)

	return b.String()
}

// StandardsText flattens standards to one line each: code, title, category and
// the serialized requirement list.
func StandardsText(standards []*types.FireStandard) string {
	lines := make([]string, 0, len(standards))
	for _, s := range standards {
		requirements, err := json.Marshal(s.KeyRequirements)
		if err != nil || s.KeyRequirements == nil {
			requirements = []byte("[]")
		}
		lines = append(lines, fmt.Sprintf("%s: %s. Category: %s. Requirements: %s", s.StandardCode, s.Title, s.Category, requirements))
	}
	return strings.Join(lines, "\n")
}

func orUnspecified(s *string) string {
	if v := strings.TrimSpace(utils.PtrString(s)); v != "" {
		return v
	}
	return "Not specified"
}

const extractionSystemPrompt = "You are a fire safety expert that extracts structured findings from assessment conversations. Always return valid JSON."

func extractionPrompt(reply string) string {
	return `Extract any fire safety findings from the following assessment response. Return a JSON object with a "findings" array. Each finding should have:
- category: string (e.g., "Escape Routes", "Fire Doors", "Housekeeping")
- title: string (brief title)
- description: string (detailed description)
- severity: "observation" | "minor" | "major" | "critical"
- recommendedAction: string (what should be done)
- standardsReference: string (relevant standard like "RRFSO 2005" or "BS 9999")

If no findings are present, return {"findings": []}.

Assessment Response:
` + reply
}
