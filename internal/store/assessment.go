package store

import (
	"context"
	"fmt"
	"time"

	"firerisk/internal/utils"
	"firerisk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const assessmentTableName = "assessments"

var assessmentColumns = utils.StructTagValues(types.Assessment{})

type AssessmentRepository struct {
	db DBTX
}

func NewAssessmentRepository(db DBTX) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// CreateAssessment inserts a new assessment and sets its generated ID and
// timestamps.
func (r *AssessmentRepository) CreateAssessment(ctx context.Context, assessment *types.Assessment) error {
	if err := live(r.db); err != nil {
		return err
	}

	now := time.Now()
	assessment.CreatedAt = now
	assessment.UpdatedAt = now
	if assessment.AssessmentDate.IsZero() {
		assessment.AssessmentDate = now
	}
	if assessment.Status == "" {
		assessment.Status = types.AssessmentStatusDraft
	}

	query, args, err := psql().
		Insert(assessmentTableName).
		SetMap(utils.StructToMap(assessment, "id")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert assessment query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&assessment.ID)
	return utils.ErrorWrapOrNil(err, "failed to create assessment")
}

func (r *AssessmentRepository) Assessment(ctx context.Context, assessmentID int64) (*types.Assessment, error) {
	if err := live(r.db); err != nil {
		return nil, err
	}

	query, args, err := psql().
		Select(assessmentColumns...).
		From(assessmentTableName).
		Where(sq.Eq{"id": assessmentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assessment query: %w", err)
	}

	var assessment = new(types.Assessment)
	err = pgxscan.Get(ctx, r.db, assessment, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch assessment: %w", err)
	}

	return assessment, nil
}

// AssessmentsByUser lists the caller's assessments, newest first.
func (r *AssessmentRepository) AssessmentsByUser(ctx context.Context, userID string) ([]*types.Assessment, error) {
	if err := live(r.db); err != nil {
		return nil, err
	}

	query, args, err := psql().
		Select(assessmentColumns...).
		From(assessmentTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assessments query: %w", err)
	}

	var assessments = make([]*types.Assessment, 0)
	err = pgxscan.Select(ctx, r.db, &assessments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assessments: %w", err)
	}

	return assessments, nil
}

// UpdateAssessment writes only the fields present in patch; an explicit null
// clears the column. Columns are set in
// a fixed order so the generated statement is stable.
func (r *AssessmentRepository) UpdateAssessment(ctx context.Context, assessmentID int64, patch *types.AssessmentPatch) error {
	if err := live(r.db); err != nil {
		return err
	}

	if err := patch.Validate(); err != nil {
		return err
	}

	builder := psql().Update(assessmentTableName)
	if patch.BuildingName != nil {
		builder = builder.Set("building_name", *patch.BuildingName)
	}
	if patch.BuildingType.Set {
		builder = builder.Set("building_type", patch.BuildingType.SQLValue())
	}
	if patch.Address.Set {
		builder = builder.Set("address", patch.Address.SQLValue())
	}
	if patch.OccupancyType.Set {
		builder = builder.Set("occupancy_type", patch.OccupancyType.SQLValue())
	}
	if patch.NumberOfOccupants.Set {
		builder = builder.Set("number_of_occupants", patch.NumberOfOccupants.SQLValue())
	}
	if patch.Status != nil {
		builder = builder.Set("status", *patch.Status)
	}
	if patch.RiskLevel.Set {
		builder = builder.Set("risk_level", patch.RiskLevel.SQLValue())
	}
	if patch.Summary.Set {
		builder = builder.Set("summary", patch.Summary.SQLValue())
	}

	query, args, err := builder.
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": assessmentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update assessment query for assessment %d: %w", assessmentID, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrAssessmentNotFound
	}

	return nil
}
