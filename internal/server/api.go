package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"firerisk/internal/report"
	"firerisk/internal/utils"
	"firerisk/pkg/types"
)

const maxJSONBodyBytes = 1 << 20

// decodeJSON strictly decodes the request body into v. Unknown keys and
// trailing data are rejected as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	return decodeStrict(body, v)
}

func decodeStrict(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return types.NewValidationError("", fmt.Sprintf("Invalid request body: %s", err))
	}
	if dec.More() {
		return types.NewValidationError("", "Invalid request body: unexpected trailing data")
	}
	return nil
}

// decodePatch reads the partial update payload. Keys outside the mutable set
// are rejected.
func decodePatch(raw json.RawMessage) (*types.AssessmentPatch, error) {
	patch := new(types.AssessmentPatch)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return patch, nil
	}
	if err := decodeStrict(bytes.NewReader(trimmed), patch); err != nil {
		return nil, err
	}
	return patch, nil
}

func queryID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, types.NewValidationError(key, fmt.Sprintf("%s must be a positive integer", key))
	}
	return id, nil
}

func (s *Service) handleAssessmentCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var in types.CreateAssessmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	assessment, err := s.createAssessment(r, userID, &in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, assessment)
}

// createAssessment always starts a record in draft, whatever the caller sent.
func (s *Service) createAssessment(r *http.Request, userID string, in *types.CreateAssessmentInput) (*types.Assessment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	assessment := &types.Assessment{
		UserID:         userID,
		BuildingName:   strings.TrimSpace(in.BuildingName),
		BuildingType:   utils.NilIfBlank(in.BuildingType),
		Address:        utils.NilIfBlank(in.Address),
		OccupancyType:  utils.NilIfBlank(in.OccupancyType),
		Status:         types.AssessmentStatusDraft,
		AssessmentDate: s.now(),
	}

	if err := s.assessments.CreateAssessment(r.Context(), assessment); err != nil {
		return nil, err
	}

	s.logger.WithField("assessment_id", assessment.ID).Info("assessment created")
	return assessment, nil
}

func (s *Service) handleAssessmentList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	assessments, err := s.assessments.AssessmentsByUser(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if assessments == nil {
		assessments = []*types.Assessment{}
	}

	s.writeJSON(w, http.StatusOK, assessments)
}

// handleAssessmentGet answers null for an assessment the caller cannot see.
func (s *Service) handleAssessmentGet(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	assessment, err := s.ownedAssessment(r.Context(), id)
	if errors.Is(err, types.ErrAssessmentNotFound) {
		s.writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, assessment)
}

type updateAssessmentRequest struct {
	ID   int64           `json:"id"`
	Data json.RawMessage `json:"data"`
}

func (s *Service) handleAssessmentUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateAssessmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ID <= 0 {
		s.writeError(w, r, types.NewValidationError("id", "id must be a positive integer"))
		return
	}

	patch, err := decodePatch(req.Data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.ownedAssessment(ctx, req.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.assessments.UpdateAssessment(ctx, req.ID, patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.assessments.Assessment(ctx, req.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Service) handleConversationChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in types.ChatInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.AssessmentID <= 0 {
		s.writeError(w, r, types.NewValidationError("assessmentId", "assessmentId must be a positive integer"))
		return
	}

	if _, err := s.ownedAssessment(ctx, in.AssessmentID); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.pipeline.Chat(ctx, &in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Service) handleConversationHistory(w http.ResponseWriter, r *http.Request) {
	assessmentID, ok := s.ownedAssessmentFromQuery(w, r)
	if !ok {
		return
	}

	history, err := s.conversations.History(r.Context(), assessmentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if history == nil {
		history = []*types.ConversationMessage{}
	}

	s.writeJSON(w, http.StatusOK, history)
}

func (s *Service) handleFindingsList(w http.ResponseWriter, r *http.Request) {
	assessmentID, ok := s.ownedAssessmentFromQuery(w, r)
	if !ok {
		return
	}

	findings, err := s.findings.FindingsByAssessment(r.Context(), assessmentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if findings == nil {
		findings = []*types.Finding{}
	}

	s.writeJSON(w, http.StatusOK, findings)
}

func (s *Service) handleImagesList(w http.ResponseWriter, r *http.Request) {
	assessmentID, ok := s.ownedAssessmentFromQuery(w, r)
	if !ok {
		return
	}

	images, err := s.images.ImagesByAssessment(r.Context(), assessmentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if images == nil {
		images = []*types.AssessmentImage{}
	}

	s.writeJSON(w, http.StatusOK, images)
}

func (s *Service) ownedAssessmentFromQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	assessmentID, err := queryID(r, "assessmentId")
	if err != nil {
		s.writeError(w, r, err)
		return 0, false
	}

	if _, err := s.ownedAssessment(r.Context(), assessmentID); err != nil {
		s.writeError(w, r, err)
		return 0, false
	}

	return assessmentID, true
}

type generateReportRequest struct {
	AssessmentID int64 `json:"assessmentId"`
}

func (s *Service) handleReportGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.AssessmentID <= 0 {
		s.writeError(w, r, types.NewValidationError("assessmentId", "assessmentId must be a positive integer"))
		return
	}

	result, err := s.buildReport(r, req.AssessmentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// buildReport gathers an owned assessment with its findings and transcript
// and renders them.
func (s *Service) buildReport(r *http.Request, assessmentID int64) (*types.ReportResult, error) {
	ctx := r.Context()

	assessment, err := s.ownedAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	findings, err := s.findings.FindingsByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	conversation, err := s.conversations.History(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now()
	html, err := report.Render(&report.Data{
		Assessment:   assessment,
		Findings:     findings,
		Conversation: conversation,
		GeneratedAt:  generatedAt,
	})
	if err != nil {
		return nil, err
	}

	return &types.ReportResult{
		Success:     true,
		HTMLContent: html,
		FileName:    report.FileName(assessment.BuildingName, generatedAt),
		Message:     "Report generated successfully",
	}, nil
}
