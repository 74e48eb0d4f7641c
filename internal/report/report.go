package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"firerisk/pkg/types"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html").Funcs(template.FuncMap{
		"orNA": func(s *string) string {
			if s == nil || strings.TrimSpace(*s) == "" {
				return "N/A"
			}
			return *s
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"lower": strings.ToLower,
	}).ParseFS(templateFS, "templates/report.html"),
)

const (
	RiskCritical = "Critical"
	RiskHigh     = "High"
	RiskMedium   = "Medium"
	RiskLow      = "Low"
)

// Data is everything a report is rendered from. Findings and Conversation are
// expected in their listing order.
type Data struct {
	Assessment   *types.Assessment
	Findings     []*types.Finding
	Conversation []*types.ConversationMessage
	GeneratedAt  time.Time
}

type Counts struct {
	Critical    int
	Major       int
	Minor       int
	Observation int
}

func CountBySeverity(findings []*types.Finding) Counts {
	var c Counts
	for _, f := range findings {
		switch f.Severity {
		case types.SeverityCritical:
			c.Critical++
		case types.SeverityMajor:
			c.Major++
		case types.SeverityMinor:
			c.Minor++
		case types.SeverityObservation:
			c.Observation++
		}
	}
	return c
}

// OverallRisk maps the highest severity present to a label. Only presence
// matters, not how many findings share a severity.
func OverallRisk(findings []*types.Finding) string {
	c := CountBySeverity(findings)
	switch {
	case c.Critical > 0:
		return RiskCritical
	case c.Major > 0:
		return RiskHigh
	case c.Minor > 0:
		return RiskMedium
	default:
		return RiskLow
	}
}

type view struct {
	Assessment       *types.Assessment
	Findings         []*types.Finding
	Counts           Counts
	OverallRisk      string
	InteractionCount int
	AssessmentDate   string
	Generated        string
	GeneratedISO     string
}

// Render produces a standalone HTML document suitable for print to PDF. All
// interpolated text is escaped.
func Render(data *Data) (string, error) {
	if data == nil || data.Assessment == nil {
		return "", types.ErrAssessmentNotFound
	}

	generated := data.GeneratedAt.UTC()
	v := view{
		Assessment:       data.Assessment,
		Findings:         data.Findings,
		Counts:           CountBySeverity(data.Findings),
		OverallRisk:      OverallRisk(data.Findings),
		InteractionCount: len(data.Conversation),
		AssessmentDate:   data.Assessment.AssessmentDate.Format("2 January 2006"),
		Generated:        generated.Format("2 January 2006 15:04 MST"),
		GeneratedISO:     generated.Format(time.RFC3339),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	return buf.String(), nil
}

var fileNameReplacer = strings.NewReplacer("/", "_", `\`, "_")

// FileName is the download name for a report generated at the given time.
func FileName(buildingName string, at time.Time) string {
	return fmt.Sprintf("Fire_Risk_Assessment_%s_%s.html",
		fileNameReplacer.Replace(buildingName),
		at.UTC().Format("2006-01-02"),
	)
}
