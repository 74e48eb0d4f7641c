package types

import "time"

type Severity string

const (
	SeverityObservation Severity = "observation"
	SeverityMinor       Severity = "minor"
	SeverityMajor       Severity = "major"
	SeverityCritical    Severity = "critical"
)

// Severities lists every severity from lowest to highest risk.
var Severities = []Severity{
	SeverityObservation,
	SeverityMinor,
	SeverityMajor,
	SeverityCritical,
}

// SeverityRank is the ordinal used for ordering findings. Higher is riskier.
var SeverityRank = map[Severity]int{
	SeverityObservation: 1,
	SeverityMinor:       2,
	SeverityMajor:       3,
	SeverityCritical:    4,
}

func (s Severity) Valid() bool {
	_, ok := SeverityRank[s]
	return ok
}

func (s Severity) Rank() int {
	return SeverityRank[s]
}

type FindingStatus string

const (
	FindingStatusOpen       FindingStatus = "open"
	FindingStatusInProgress FindingStatus = "in_progress"
	FindingStatusResolved   FindingStatus = "resolved"
	FindingStatusDeferred   FindingStatus = "deferred"
)

type Finding struct {
	ID                 int64         `db:"id" json:"id"`
	AssessmentID       int64         `db:"assessment_id" json:"assessmentId"`
	Category           string        `db:"category" json:"category"`
	Title              string        `db:"title" json:"title"`
	Description        *string       `db:"description" json:"description"`
	Severity           Severity      `db:"severity" json:"severity"`
	Status             FindingStatus `db:"status" json:"status"`
	RecommendedAction  *string       `db:"recommended_action" json:"recommendedAction"`
	StandardsReference *string       `db:"standards_reference" json:"standardsReference"`
	ImageURL           *string       `db:"image_url" json:"imageUrl"`
	CreatedAt          time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updatedAt"`
}
