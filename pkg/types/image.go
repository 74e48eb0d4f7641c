package types

import "time"

const ImageTypeGeneral = "general"

type AssessmentImage struct {
	ID           int64     `db:"id" json:"id"`
	AssessmentID int64     `db:"assessment_id" json:"assessmentId"`
	ImageURL     string    `db:"image_url" json:"imageUrl"`
	ImageType    string    `db:"image_type" json:"imageType"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
