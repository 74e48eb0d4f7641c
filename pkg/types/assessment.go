package types

import (
	"strings"
	"time"
)

type AssessmentStatus string

const (
	AssessmentStatusDraft      AssessmentStatus = "draft"
	AssessmentStatusInProgress AssessmentStatus = "in_progress"
	AssessmentStatusCompleted  AssessmentStatus = "completed"
	AssessmentStatusArchived   AssessmentStatus = "archived"
)

func (s AssessmentStatus) Valid() bool {
	switch s {
	case AssessmentStatusDraft, AssessmentStatusInProgress, AssessmentStatusCompleted, AssessmentStatusArchived:
		return true
	}
	return false
}

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical:
		return true
	}
	return false
}

// Assessment is the case record for one building's fire-safety review. The
// owning user is the only authorization boundary for everything hanging off it.
type Assessment struct {
	ID                int64            `db:"id" json:"id"`
	UserID            string           `db:"user_id" json:"userId"`
	BuildingName      string           `db:"building_name" json:"buildingName"`
	BuildingType      *string          `db:"building_type" json:"buildingType"`
	Address           *string          `db:"address" json:"address"`
	OccupancyType     *string          `db:"occupancy_type" json:"occupancyType"`
	NumberOfOccupants *int32           `db:"number_of_occupants" json:"numberOfOccupants"`
	AssessmentDate    time.Time        `db:"assessment_date" json:"assessmentDate"`
	Status            AssessmentStatus `db:"status" json:"status"`
	RiskLevel         *RiskLevel       `db:"risk_level" json:"riskLevel"`
	Summary           *string          `db:"summary" json:"summary"`
	CreatedAt         time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updatedAt"`
}

type CreateAssessmentInput struct {
	BuildingName  string `json:"buildingName" form:"building_name"`
	BuildingType  string `json:"buildingType,omitempty" form:"building_type"`
	Address       string `json:"address,omitempty" form:"address"`
	OccupancyType string `json:"occupancyType,omitempty" form:"occupancy_type"`
}

func (in *CreateAssessmentInput) Validate() error {
	if strings.TrimSpace(in.BuildingName) == "" {
		return NewValidationError("buildingName", "Building name is required.")
	}
	return nil
}

// AssessmentPatch enumerates the mutable assessment fields. An omitted field
// is left untouched. Nullable columns take an explicit null to clear them; a
// null building name or status is treated as omitted.
type AssessmentPatch struct {
	BuildingName      *string             `json:"buildingName,omitempty"`
	BuildingType      Nullable[string]    `json:"buildingType"`
	Address           Nullable[string]    `json:"address"`
	OccupancyType     Nullable[string]    `json:"occupancyType"`
	NumberOfOccupants Nullable[int32]     `json:"numberOfOccupants"`
	Status            *AssessmentStatus   `json:"status,omitempty"`
	RiskLevel         Nullable[RiskLevel] `json:"riskLevel"`
	Summary           Nullable[string]    `json:"summary"`
}

func (p *AssessmentPatch) IsEmpty() bool {
	return p.BuildingName == nil &&
		!p.BuildingType.Set &&
		!p.Address.Set &&
		!p.OccupancyType.Set &&
		!p.NumberOfOccupants.Set &&
		p.Status == nil &&
		!p.RiskLevel.Set &&
		!p.Summary.Set
}

func (p *AssessmentPatch) Validate() error {
	if p.IsEmpty() {
		return NewValidationError("data", "No fields to update.")
	}

	if p.BuildingName != nil && strings.TrimSpace(*p.BuildingName) == "" {
		return NewValidationError("buildingName", "Building name cannot be blank.")
	}

	if p.NumberOfOccupants.HasValue() && p.NumberOfOccupants.Value < 0 {
		return NewValidationError("numberOfOccupants", "Number of occupants cannot be negative.")
	}

	if p.Status != nil && !p.Status.Valid() {
		return NewValidationError("status", "Status must be one of draft, in_progress, completed, archived.")
	}

	if p.RiskLevel.HasValue() && !p.RiskLevel.Value.Valid() {
		return NewValidationError("riskLevel", "Risk level must be one of low, medium, high, critical.")
	}

	return nil
}
