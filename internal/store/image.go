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

const imageTableName = "assessment_images"

var imageColumns = utils.StructTagValues(types.AssessmentImage{})

type ImageRepository struct {
	db DBTX
}

func NewImageRepository(db DBTX) *ImageRepository {
	return &ImageRepository{db: db}
}

// AddImage records a pointer to an object already written to storage.
func (r *ImageRepository) AddImage(ctx context.Context, image *types.AssessmentImage) error {
	if err := live(r.db); err != nil {
		return err
	}

	image.CreatedAt = time.Now()
	if image.ImageType == "" {
		image.ImageType = types.ImageTypeGeneral
	}

	query, args, err := psql().
		Insert(imageTableName).
		Columns("assessment_id", "image_url", "image_type", "created_at").
		Values(image.AssessmentID, image.ImageURL, image.ImageType, image.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert image query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&image.ID)
	return utils.ErrorWrapOrNil(err, "failed to add assessment image")
}

func (r *ImageRepository) ImagesByAssessment(ctx context.Context, assessmentID int64) ([]*types.AssessmentImage, error) {
	if err := live(r.db); err != nil {
		return nil, err
	}

	query, args, err := psql().
		Select(imageColumns...).
		From(imageTableName).
		Where(sq.Eq{"assessment_id": assessmentID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate images query: %w", err)
	}

	var images = make([]*types.AssessmentImage, 0)
	err = pgxscan.Select(ctx, r.db, &images, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assessment images: %w", err)
	}

	return images, nil
}
