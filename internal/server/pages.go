package server

import (
	"fmt"
	"net/http"
	"strconv"

	"firerisk/internal/report"
	"firerisk/internal/upload"
	"firerisk/pkg/types"
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/assessments", http.StatusSeeOther)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.redirectToLogin(w, r)
		return
	}

	assessments, err := s.assessments.AssessmentsByUser(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list assessments")
		s.internalServerError(w)
		return
	}

	data := &types.DashboardPageData{
		BasePageData: types.BasePageData{Title: "Assessments"},
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
		Assessments:  assessments,
	}

	if err := s.renderTemplate(w, r, "page.dashboard", data); err != nil {
		s.logger.WithError(err).Error("failed to render dashboard page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostAssessment(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.redirectToLogin(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "/assessments", "invalid form payload")
		return
	}

	var in types.CreateAssessmentInput
	if err := decoder.Decode(&in, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode assessment form")
		s.redirectWithError(w, r, "/assessments", "invalid form payload")
		return
	}

	assessment, err := s.createAssessment(r, userID, &in)
	if err != nil {
		_, body := statusFor(err)
		if !types.IsValidation(err) {
			s.logger.WithError(err).Error("failed to create assessment")
		}
		s.redirectWithError(w, r, "/assessments", body.Message)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/assessments/%d", assessment.ID), http.StatusSeeOther)
}

// pathAssessment resolves the :id path parameter to an assessment the caller
// owns, answering 404 otherwise.
func (s *Service) pathAssessment(w http.ResponseWriter, r *http.Request) (*types.Assessment, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return nil, false
	}

	assessment, err := s.ownedAssessment(r.Context(), id)
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusNotFound {
			http.NotFound(w, r)
			return nil, false
		}
		s.logger.WithError(err).Error("failed to load assessment")
		http.Error(w, http.StatusText(status), status)
		return nil, false
	}

	return assessment, true
}

func (s *Service) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	assessment, ok := s.pathAssessment(w, r)
	if !ok {
		return
	}

	messages, err := s.conversations.History(ctx, assessment.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load transcript")
		s.internalServerError(w)
		return
	}

	findings, err := s.findings.FindingsByAssessment(ctx, assessment.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load findings")
		s.internalServerError(w)
		return
	}

	images, err := s.images.ImagesByAssessment(ctx, assessment.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load images")
		s.internalServerError(w)
		return
	}

	counts := report.CountBySeverity(findings)

	data := &types.AssessmentPageData{
		BasePageData: types.BasePageData{Title: assessment.BuildingName},
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
		Assessment:   assessment,
		Messages:     messages,
		Findings:     findings,
		Images:       images,
		OverallRisk:  report.OverallRisk(findings),
		Counts: []types.SeverityCount{
			{Severity: types.SeverityCritical, Count: counts.Critical},
			{Severity: types.SeverityMajor, Count: counts.Major},
			{Severity: types.SeverityMinor, Count: counts.Minor},
			{Severity: types.SeverityObservation, Count: counts.Observation},
		},
		MaxUploadMiB: upload.MaxImageBytes >> 20,
	}

	if err := s.renderTemplate(w, r, "page.assessment", data); err != nil {
		s.logger.WithError(err).Error("failed to render assessment page")
		s.internalServerError(w)
		return
	}
}

type chatForm struct {
	Message         string `form:"message"`
	AudioTranscript string `form:"audio_transcript"`
}

func (s *Service) handlePostChat(w http.ResponseWriter, r *http.Request) {
	assessment, ok := s.pathAssessment(w, r)
	if !ok {
		return
	}
	page := fmt.Sprintf("/assessments/%d", assessment.ID)

	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, page, "invalid form payload")
		return
	}

	var in chatForm
	if err := decoder.Decode(&in, r.PostForm); err != nil {
		s.redirectWithError(w, r, page, "invalid form payload")
		return
	}

	input := &types.ChatInput{
		AssessmentID: assessment.ID,
		Message:      in.Message,
	}
	if in.AudioTranscript != "" {
		input.AudioTranscript = &in.AudioTranscript
	}

	if _, err := s.pipeline.Chat(r.Context(), input); err != nil {
		_, body := statusFor(err)
		s.logger.WithError(err).WithField("assessment_id", assessment.ID).Error("conversation turn failed")
		s.redirectWithError(w, r, page, body.Message)
		return
	}

	http.Redirect(w, r, page+"#latest", http.StatusSeeOther)
}

func (s *Service) handlePostImage(w http.ResponseWriter, r *http.Request) {
	defer cleanupMultipart(r)

	assessment, ok := s.pathAssessment(w, r)
	if !ok {
		return
	}
	page := fmt.Sprintf("/assessments/%d", assessment.ID)

	file, closeFile, err := readUpload(w, r)
	if err != nil {
		_, body := statusFor(err)
		s.redirectWithError(w, r, page, body.Message)
		return
	}
	defer closeFile()

	result, err := s.intake.Accept(r.Context(), assessment.ID, file)
	if err != nil {
		_, body := statusFor(err)
		s.logger.WithError(err).WithField("assessment_id", assessment.ID).Error("image upload failed")
		s.redirectWithError(w, r, page, body.Message)
		return
	}

	s.redirectWithNotice(w, r, page, result.Message)
}

func (s *Service) handleGetReport(w http.ResponseWriter, r *http.Request) {
	assessment, ok := s.pathAssessment(w, r)
	if !ok {
		return
	}

	result, err := s.buildReport(r, assessment.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to build report")
		s.internalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	_, _ = w.Write([]byte(result.HTMLContent))
}
