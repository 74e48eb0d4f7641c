package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"firerisk/internal/utils"
	"firerisk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const standardTableName = "fire_standards"

var standardColumns = utils.StructTagValues(types.FireStandard{})

type StandardRepository struct {
	db DBTX
}

func NewStandardRepository(db DBTX) *StandardRepository {
	return &StandardRepository{db: db}
}

func (r *StandardRepository) AllStandards(ctx context.Context) ([]*types.FireStandard, error) {
	if err := live(r.db); err != nil {
		return nil, err
	}

	query, args, err := psql().
		Select(standardColumns...).
		From(standardTableName).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate standards query: %w", err)
	}

	var standards []*types.FireStandard
	err = pgxscan.Select(ctx, r.db, &standards, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standards: %w", err)
	}

	return standards, nil
}

// UpsertStandard inserts a standard or refreshes the row with the same code.
func (r *StandardRepository) UpsertStandard(ctx context.Context, standard *types.FireStandard) error {
	if err := live(r.db); err != nil {
		return err
	}

	if standard.KeyRequirements == nil {
		standard.KeyRequirements = []string{}
	}
	standard.CreatedAt = time.Now()

	standardMap := utils.StructToMap(standard, "id")

	// Exclude the conflict key and created_at from updates
	updateColumns := make([]string, 0, len(standardMap))
	for k := range standardMap {
		if k != "standard_code" && k != "created_at" {
			updateColumns = append(updateColumns, k)
		}
	}

	query, args, err := psql().
		Insert(standardTableName).
		SetMap(standardMap).
		Suffix("ON CONFLICT (standard_code) DO UPDATE SET " + buildUpdateClause(updateColumns)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert standard query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert standard %s: %w", standard.StandardCode, err)
	}

	return nil
}

// DeleteStandardsNotIn removes standards whose code is absent from codes, so
// the seed list stays the source of truth.
func (r *StandardRepository) DeleteStandardsNotIn(ctx context.Context, codes []string) (int64, error) {
	if err := live(r.db); err != nil {
		return 0, err
	}

	query, args, err := psql().
		Delete(standardTableName).
		Where(sq.NotEq{"standard_code": codes}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete standards query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale standards: %w", err)
	}

	return tag.RowsAffected(), nil
}

// buildUpdateClause creates the SET clause for ON CONFLICT DO UPDATE
// e.g., "category = EXCLUDED.category, title = EXCLUDED.title"
func buildUpdateClause(columns []string) string {
	sort.Strings(columns)

	parts := make([]string, len(columns))
	for i, column := range columns {
		parts[i] = fmt.Sprintf("%s = EXCLUDED.%s", column, column)
	}
	return strings.Join(parts, ", ")
}
