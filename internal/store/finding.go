package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"firerisk/internal/utils"
	"firerisk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const findingTableName = "findings"

var findingColumns = utils.StructTagValues(types.Finding{})

// severityOrder ranks findings by risk rather than by the enum's string value.
var severityOrder = severityRankExpr() + " DESC"

func severityRankExpr() string {
	var b strings.Builder
	b.WriteString("CASE severity")
	for _, severity := range types.Severities {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", severity, severity.Rank())
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}

type FindingRepository struct {
	db DBTX
}

func NewFindingRepository(db DBTX) *FindingRepository {
	return &FindingRepository{db: db}
}

// CreateFinding inserts a finding. Findings are never deduplicated.
func (r *FindingRepository) CreateFinding(ctx context.Context, finding *types.Finding) error {
	if err := live(r.db); err != nil {
		return err
	}

	now := time.Now()
	finding.CreatedAt = now
	finding.UpdatedAt = now
	if finding.Status == "" {
		finding.Status = types.FindingStatusOpen
	}

	query, args, err := psql().
		Insert(findingTableName).
		SetMap(utils.StructToMap(finding, "id")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert finding query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&finding.ID)
	return utils.ErrorWrapOrNil(err, "failed to create finding")
}

// FindingsByAssessment returns an assessment's findings, riskiest first.
func (r *FindingRepository) FindingsByAssessment(ctx context.Context, assessmentID int64) ([]*types.Finding, error) {
	if err := live(r.db); err != nil {
		return nil, err
	}

	query, args, err := psql().
		Select(findingColumns...).
		From(findingTableName).
		Where(sq.Eq{"assessment_id": assessmentID}).
		OrderBy(severityOrder, "created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate findings query: %w", err)
	}

	var findings = make([]*types.Finding, 0)
	err = pgxscan.Select(ctx, r.db, &findings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch findings: %w", err)
	}

	return findings, nil
}
