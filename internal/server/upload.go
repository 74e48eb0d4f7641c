package server

import (
	"errors"
	"mime/multipart"
	"net/http"

	"firerisk/internal/upload"
	"firerisk/pkg/types"
)

// multipartOverhead leaves room for the form fields and part headers that
// travel with the image.
const multipartOverhead = 1 << 20

// readUpload parses the multipart body and returns the "file" part. The body
// is capped so an oversized upload fails here, before any storage write.
func readUpload(w http.ResponseWriter, r *http.Request) (*upload.File, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxImageBytes+multipartOverhead)

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, types.NewValidationError("file", "File exceeds the 16 MiB limit")
		}
		return nil, nil, types.NewValidationError("file", "Invalid multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, types.NewValidationError("file", "No file uploaded")
		}
		return nil, nil, types.NewValidationError("file", "Unable to read uploaded file")
	}

	return fileFromHeader(file, header), func() { _ = file.Close() }, nil
}

func fileFromHeader(file multipart.File, header *multipart.FileHeader) *upload.File {
	return &upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

func (s *Service) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	defer cleanupMultipart(r)

	file, closeFile, err := readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeFile()

	assessmentID, err := upload.ParseAssessmentID(r.FormValue("assessmentId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.ownedAssessment(r.Context(), assessmentID); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.intake.Accept(r.Context(), assessmentID, file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}
