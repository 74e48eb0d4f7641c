package upload

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"

	"firerisk/internal/storage"
	"firerisk/internal/utils"
	"firerisk/pkg/types"

	"github.com/sirupsen/logrus"
)

// MaxImageBytes is the largest image accepted per upload.
const MaxImageBytes = 16 << 20

const defaultExtension = "jpg"

type Images interface {
	AddImage(ctx context.Context, image *types.AssessmentImage) error
}

// File is one uploaded part as read from a multipart form.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Intake struct {
	logger *logrus.Logger
	store  storage.ObjectStore
	images Images
	now    func() time.Time
}

func NewIntake(logger *logrus.Logger, store storage.ObjectStore, images Images) *Intake {
	return &Intake{
		logger: logger,
		store:  store,
		images: images,
		now:    time.Now,
	}
}

// ParseAssessmentID reads the assessmentId form field.
func ParseAssessmentID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, types.NewValidationError("assessmentId", "Invalid assessment ID")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, types.NewValidationError("assessmentId", "Invalid assessment ID")
	}
	return id, nil
}

// Validate checks everything that can be known about the file before any
// bytes are written anywhere.
func Validate(file *File) error {
	if file == nil || file.Body == nil {
		return types.NewValidationError("file", "No file uploaded")
	}
	if file.Size > MaxImageBytes {
		return types.NewValidationError("file", fmt.Sprintf("File exceeds the %d MiB limit", MaxImageBytes>>20))
	}
	if !strings.HasPrefix(strings.ToLower(file.ContentType), "image/") {
		return types.NewValidationError("file", "Only image files are allowed")
	}
	return nil
}

// ObjectKey namespaces the object under its assessment. The millisecond
// timestamp and random suffix make collisions unlikely but not impossible.
func ObjectKey(assessmentID int64, at time.Time, fileName string) string {
	return fmt.Sprintf("assessments/%d/images/%d-%s.%s", assessmentID, at.UnixMilli(), utils.NanoID(), extension(fileName))
}

func extension(fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	if ext == "" {
		return defaultExtension
	}
	for _, r := range ext {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return defaultExtension
		}
	}
	return ext
}

// Accept stores the file and records a pointer row for it. A failure to
// record the row leaves the stored object behind.
func (i *Intake) Accept(ctx context.Context, assessmentID int64, file *File) (*types.UploadResult, error) {
	if assessmentID <= 0 {
		return nil, types.NewValidationError("assessmentId", "Invalid assessment ID")
	}
	if err := Validate(file); err != nil {
		return nil, err
	}

	key := ObjectKey(assessmentID, i.now(), file.Name)
	entry := i.logger.WithFields(logrus.Fields{
		"assessment_id": assessmentID,
		"key":           key,
		"size":          file.Size,
	})

	url, err := i.store.Put(ctx, key, file.Body, file.Size, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: store image: %w", types.ErrExternalService, err)
	}

	err = i.images.AddImage(ctx, &types.AssessmentImage{
		AssessmentID: assessmentID,
		ImageURL:     url,
		ImageType:    types.ImageTypeGeneral,
	})
	if err != nil {
		entry.WithError(err).Error("image stored but row not recorded")
		return nil, fmt.Errorf("record image: %w", err)
	}

	entry.Info("image uploaded")

	return &types.UploadResult{
		Success:  true,
		ImageURL: url,
		Message:  "Image uploaded successfully",
	}, nil
}
