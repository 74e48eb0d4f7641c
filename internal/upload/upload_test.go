package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"firerisk/pkg/types"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	key         string
	size        int64
	contentType string
	body        []byte
}

type fakeStore struct {
	puts []putCall
	err  error
}

func (f *fakeStore) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.puts = append(f.puts, putCall{key: key, size: size, contentType: contentType, body: b})
	return "https://cdn.example.com/" + key, nil
}

type fakeImages struct {
	rows []*types.AssessmentImage
	err  error
}

func (f *fakeImages) AddImage(_ context.Context, image *types.AssessmentImage) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, image)
	return nil
}

func newIntake(store *fakeStore, images *fakeImages) *Intake {
	logger, _ := logtest.NewNullLogger()
	intake := NewIntake(logger, store, images)
	intake.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return intake
}

func TestAcceptRejectsOversizedFileBeforeStoring(t *testing.T) {
	store, images := &fakeStore{}, &fakeImages{}
	intake := newIntake(store, images)

	size := int64(20 << 20)
	_, err := intake.Accept(context.Background(), 3, &File{
		Name:        "plan.png",
		ContentType: "image/png",
		Size:        size,
		Body:        io.LimitReader(zeroReader{}, size),
	})
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
	assert.Empty(t, store.puts)
	assert.Empty(t, images.rows)
}

func TestAcceptRejectsNonImage(t *testing.T) {
	store, images := &fakeStore{}, &fakeImages{}
	intake := newIntake(store, images)

	_, err := intake.Accept(context.Background(), 3, &File{
		Name:        "notes.pdf",
		ContentType: "application/pdf",
		Size:        10,
		Body:        strings.NewReader("%PDF-1.7.."),
	})
	assert.True(t, types.IsValidation(err))
	assert.Empty(t, store.puts)
	assert.Empty(t, images.rows)
}

func TestAcceptRejectsMissingFileAndID(t *testing.T) {
	intake := newIntake(&fakeStore{}, &fakeImages{})

	_, err := intake.Accept(context.Background(), 3, nil)
	assert.True(t, types.IsValidation(err))

	_, err = intake.Accept(context.Background(), 0, &File{ContentType: "image/png", Body: strings.NewReader("x"), Size: 1})
	assert.True(t, types.IsValidation(err))
}

func TestAcceptStoresOneObjectAndOneRow(t *testing.T) {
	store, images := &fakeStore{}, &fakeImages{}
	intake := newIntake(store, images)

	body := bytes.Repeat([]byte{0xff}, 1024)
	result, err := intake.Accept(context.Background(), 3, &File{
		Name:        "Stair Door.JPEG",
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	})
	require.NoError(t, err)

	require.Len(t, store.puts, 1)
	require.Len(t, images.rows, 1)

	put := store.puts[0]
	assert.Regexp(t, regexp.MustCompile(`^assessments/3/images/1700000000123-[0-9a-f]{16}\.jpeg$`), put.key)
	assert.Equal(t, "image/jpeg", put.contentType)
	assert.Equal(t, int64(1024), put.size)
	assert.Equal(t, body, put.body)

	row := images.rows[0]
	assert.Equal(t, int64(3), row.AssessmentID)
	assert.Equal(t, types.ImageTypeGeneral, row.ImageType)
	assert.Equal(t, "https://cdn.example.com/"+put.key, row.ImageURL)

	assert.True(t, result.Success)
	assert.Equal(t, row.ImageURL, result.ImageURL)
	assert.Equal(t, "Image uploaded successfully", result.Message)
}

func TestAcceptAllowsExactlyMaxSize(t *testing.T) {
	store, images := &fakeStore{}, &fakeImages{}
	intake := newIntake(store, images)

	_, err := intake.Accept(context.Background(), 3, &File{
		Name:        "big.png",
		ContentType: "image/png",
		Size:        MaxImageBytes,
		Body:        io.LimitReader(zeroReader{}, MaxImageBytes),
	})
	require.NoError(t, err)
	assert.Len(t, store.puts, 1)
}

func TestAcceptStoreFailure(t *testing.T) {
	store, images := &fakeStore{err: errors.New("bucket missing")}, &fakeImages{}
	intake := newIntake(store, images)

	_, err := intake.Accept(context.Background(), 3, &File{Name: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, types.ErrExternalService)
	assert.Empty(t, images.rows)
}

func TestAcceptRowFailureLeavesObject(t *testing.T) {
	store, images := &fakeStore{}, &fakeImages{err: types.ErrDatabaseUnavailable}
	intake := newIntake(store, images)

	_, err := intake.Accept(context.Background(), 3, &File{Name: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, types.ErrDatabaseUnavailable)
	assert.Len(t, store.puts, 1)
}

func TestParseAssessmentID(t *testing.T) {
	id, err := ParseAssessmentID(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, raw := range []string{"", "abc", "-4", "0", "1.5"} {
		_, err := ParseAssessmentID(raw)
		assert.True(t, types.IsValidation(err), raw)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "png", extension("a.PNG"))
	assert.Equal(t, "jpg", extension("noext"))
	assert.Equal(t, "jpg", extension("weird.p/g"))
	assert.Equal(t, "jpg", extension("trailing."))
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
