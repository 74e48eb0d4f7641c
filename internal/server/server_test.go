package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"firerisk/internal"
	"firerisk/internal/upload"
	"firerisk/internal/utils"
	"firerisk/pkg/types"

	"github.com/alexedwards/flow"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const caller = "user-1"

type memoryDB struct {
	assessments map[int64]*types.Assessment
	messages    []*types.ConversationMessage
	findings    []*types.Finding
	images      []*types.AssessmentImage
	patches     []*types.AssessmentPatch
	nextID      int64
}

func newMemoryDB() *memoryDB {
	return &memoryDB{assessments: map[int64]*types.Assessment{}, nextID: 100}
}

func (m *memoryDB) CreateAssessment(_ context.Context, a *types.Assessment) error {
	m.nextID++
	a.ID = m.nextID
	m.assessments[a.ID] = a
	return nil
}

func (m *memoryDB) Assessment(_ context.Context, id int64) (*types.Assessment, error) {
	a, ok := m.assessments[id]
	if !ok {
		return nil, types.ErrAssessmentNotFound
	}
	return a, nil
}

func (m *memoryDB) AssessmentsByUser(_ context.Context, userID string) ([]*types.Assessment, error) {
	var out []*types.Assessment
	for _, a := range m.assessments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryDB) UpdateAssessment(_ context.Context, id int64, patch *types.AssessmentPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	a, ok := m.assessments[id]
	if !ok {
		return types.ErrAssessmentNotFound
	}
	m.patches = append(m.patches, patch)
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Summary.Set {
		a.Summary = nil
		if !patch.Summary.Null {
			a.Summary = utils.StringPtr(patch.Summary.Value)
		}
	}
	return nil
}

func (m *memoryDB) History(_ context.Context, id int64) ([]*types.ConversationMessage, error) {
	var out []*types.ConversationMessage
	for _, msg := range m.messages {
		if msg.AssessmentID == id {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memoryDB) FindingsByAssessment(_ context.Context, id int64) ([]*types.Finding, error) {
	var out []*types.Finding
	for _, f := range m.findings {
		if f.AssessmentID == id {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memoryDB) ImagesByAssessment(_ context.Context, id int64) ([]*types.AssessmentImage, error) {
	var out []*types.AssessmentImage
	for _, img := range m.images {
		if img.AssessmentID == id {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *memoryDB) AddImage(_ context.Context, img *types.AssessmentImage) error {
	img.ID = int64(len(m.images) + 1)
	m.images = append(m.images, img)
	return nil
}

type fakePipeline struct {
	inputs []*types.ChatInput
	err    error
}

func (f *fakePipeline) Chat(_ context.Context, in *types.ChatInput) (*types.ChatResult, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &types.ChatResult{Message: "What is the travel distance?", ConversationID: in.AssessmentID}, nil
}

type fakeObjects struct {
	keys []string
}

func (f *fakeObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

type harness struct {
	db       *memoryDB
	pipeline *fakePipeline
	objects  *fakeObjects
	mux      *flow.Mux
	userID   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger, _ := logtest.NewNullLogger()
	h := &harness{
		db:       newMemoryDB(),
		pipeline: &fakePipeline{},
		objects:  &fakeObjects{},
		mux:      flow.New(),
		userID:   caller,
	}

	templates, err := loadTemplates()
	require.NoError(t, err)

	s := &Service{
		logger:        logger,
		config:        &types.Config{},
		templates:     templates,
		assessments:   h.db,
		conversations: h.db,
		findings:      h.db,
		images:        h.db,
		pipeline:      h.pipeline,
		intake:        upload.NewIntake(logger, h.objects, h.db),
		now:           func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
	s.authenticate = func(*http.Request) (string, string, error) {
		if h.userID == "" {
			return "", "", errors.New("no session")
		}
		return h.userID, "assessor@example.com", nil
	}
	s.buildRouter(h.mux)

	return h
}

func (h *harness) seed(userID, name string) *types.Assessment {
	a := &types.Assessment{UserID: userID, BuildingName: name, Status: types.AssessmentStatusDraft}
	_ = h.db.CreateAssessment(context.Background(), a)
	return a
}

func (h *harness) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

func (h *harness) postJSON(target, body string) *httptest.ResponseRecorder {
	return h.do(http.MethodPost, target, strings.NewReader(body), "application/json")
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{types.NewValidationError("x", "bad"), http.StatusBadRequest, "validation_error"},
		{fmt.Errorf("load: %w", types.ErrAssessmentNotFound), http.StatusNotFound, "not_found"},
		{types.ErrDatabaseUnavailable, http.StatusServiceUnavailable, "database_unavailable"},
		{fmt.Errorf("%w: status 500", types.ErrExternalService), http.StatusBadGateway, "external_service_error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		status, body := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, body.Error, tc.err.Error())
		assert.NotEmpty(t, body.Message)
	}
}

func TestDecodePatch(t *testing.T) {
	patch, err := decodePatch(json.RawMessage(`{"status":"archived"}`))
	require.NoError(t, err)
	require.NotNil(t, patch.Status)
	assert.Equal(t, types.AssessmentStatusArchived, *patch.Status)
	assert.Nil(t, patch.BuildingName)
	assert.False(t, patch.Summary.Set)

	patch, err = decodePatch(json.RawMessage(`{"summary":null,"riskLevel":"high"}`))
	require.NoError(t, err)
	assert.True(t, patch.Summary.Set)
	assert.True(t, patch.Summary.Null)
	assert.True(t, patch.RiskLevel.HasValue())
	assert.Equal(t, types.RiskLevelHigh, patch.RiskLevel.Value)

	_, err = decodePatch(json.RawMessage(`{"status":"archived","userId":"someone-else"}`))
	assert.True(t, types.IsValidation(err))

	patch, err = decodePatch(nil)
	require.NoError(t, err)
	assert.True(t, patch.IsEmpty())
}

func TestUnauthenticatedRequests(t *testing.T) {
	h := newHarness(t)
	h.userID = ""

	rec := h.do(http.MethodGet, "/api/assessment.list", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)

	rec = h.do(http.MethodGet, "/assessments", nil, "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestAPILogoutClearsSession(t *testing.T) {
	h := newHarness(t)
	h.userID = ""

	rec := h.postJSON("/api/auth.logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, internal.COOKIE_ACCESS_TOKEN_NAME, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestAssessmentCreateForcesDraft(t *testing.T) {
	h := newHarness(t)

	rec := h.postJSON("/api/assessment.create", `{"buildingName":"  Riverside Offices ","buildingType":"commercial","address":""}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got types.Assessment
	decodeBody(t, rec, &got)
	assert.Equal(t, caller, got.UserID)
	assert.Equal(t, "Riverside Offices", got.BuildingName)
	assert.Equal(t, types.AssessmentStatusDraft, got.Status)
	assert.Equal(t, "commercial", utils.PtrString(got.BuildingType))
	assert.Nil(t, got.Address)
	assert.Equal(t, 2025, got.AssessmentDate.Year())
}

func TestAssessmentCreateValidation(t *testing.T) {
	h := newHarness(t)

	rec := h.postJSON("/api/assessment.create", `{"buildingName":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.postJSON("/api/assessment.create", `{"buildingName":"A","status":"completed"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, h.db.assessments)
}

func TestAssessmentListScopedToCaller(t *testing.T) {
	h := newHarness(t)
	mine := h.seed(caller, "Mine")
	h.seed("user-2", "Theirs")

	rec := h.do(http.MethodGet, "/api/assessment.list", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []types.Assessment
	decodeBody(t, rec, &got)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
}

func TestAssessmentListEmptyIsArray(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/assessment.list", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAssessmentGet(t *testing.T) {
	h := newHarness(t)
	mine := h.seed(caller, "Mine")
	theirs := h.seed("user-2", "Theirs")

	rec := h.do(http.MethodGet, fmt.Sprintf("/api/assessment.get?id=%d", mine.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"buildingName":"Mine"`)

	for _, id := range []int64{theirs.ID, 9999} {
		rec = h.do(http.MethodGet, fmt.Sprintf("/api/assessment.get?id=%d", id), nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
	}

	rec = h.do(http.MethodGet, "/api/assessment.get?id=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssessmentUpdateOnlyStatus(t *testing.T) {
	h := newHarness(t)
	a := h.seed(caller, "Depot")
	a.Address = utils.StringPtr("1 Quay Street")

	rec := h.postJSON("/api/assessment.update", fmt.Sprintf(`{"id":%d,"data":{"status":"archived"}}`, a.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, h.db.patches, 1)
	patch := h.db.patches[0]
	assert.Equal(t, types.AssessmentStatusArchived, *patch.Status)
	patch.Status = nil
	assert.True(t, patch.IsEmpty())

	var got types.Assessment
	decodeBody(t, rec, &got)
	assert.Equal(t, types.AssessmentStatusArchived, got.Status)
	assert.Equal(t, "Depot", got.BuildingName)
	assert.Equal(t, "1 Quay Street", utils.PtrString(got.Address))
}

func TestAssessmentUpdateNullClearsSummary(t *testing.T) {
	h := newHarness(t)
	a := h.seed(caller, "Depot")
	a.Summary = utils.StringPtr("Draft notes")

	rec := h.postJSON("/api/assessment.update", fmt.Sprintf(`{"id":%d,"data":{"summary":null}}`, a.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got types.Assessment
	decodeBody(t, rec, &got)
	assert.Nil(t, got.Summary)
	assert.Equal(t, "Depot", got.BuildingName)
}

func TestAssessmentUpdateRejections(t *testing.T) {
	h := newHarness(t)
	mine := h.seed(caller, "Mine")
	theirs := h.seed("user-2", "Theirs")

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"unknown key", fmt.Sprintf(`{"id":%d,"data":{"owner":"me"}}`, mine.ID), http.StatusBadRequest},
		{"empty patch", fmt.Sprintf(`{"id":%d,"data":{}}`, mine.ID), http.StatusBadRequest},
		{"missing data", fmt.Sprintf(`{"id":%d}`, mine.ID), http.StatusBadRequest},
		{"bad status", fmt.Sprintf(`{"id":%d,"data":{"status":"done"}}`, mine.ID), http.StatusBadRequest},
		{"missing id", `{"data":{"status":"archived"}}`, http.StatusBadRequest},
		{"not owner", fmt.Sprintf(`{"id":%d,"data":{"status":"archived"}}`, theirs.ID), http.StatusNotFound},
		{"no such assessment", `{"id":4242,"data":{"status":"archived"}}`, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := h.postJSON("/api/assessment.update", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}

	assert.Empty(t, h.db.patches)
	assert.Equal(t, types.AssessmentStatusDraft, theirs.Status)
}

func TestConversationChat(t *testing.T) {
	h := newHarness(t)
	a := h.seed(caller, "Depot")

	rec := h.postJSON("/api/conversation.chat", fmt.Sprintf(`{"assessmentId":%d,"message":"Two storey office","audioTranscript":"two storey office"}`, a.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, fmt.Sprintf(`{"message":"What is the travel distance?","conversationId":%d}`, a.ID), rec.Body.String())

	require.Len(t, h.pipeline.inputs, 1)
	assert.Equal(t, "two storey office", utils.PtrString(h.pipeline.inputs[0].AudioTranscript))
}

func TestConversationChatFailures(t *testing.T) {
	h := newHarness(t)
	a := h.seed(caller, "Depot")
	theirs := h.seed("user-2", "Theirs")

	rec := h.postJSON("/api/conversation.chat", fmt.Sprintf(`{"assessmentId":%d,"message":"hi"}`, theirs.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, h.pipeline.inputs)

	h.pipeline.err = fmt.Errorf("failed to generate reply: %w", types.ErrExternalService)
	rec = h.postJSON("/api/conversation.chat", fmt.Sprintf(`{"assessmentId":%d,"message":"hi"}`, a.ID))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"external_service_error","message":"Upstream service failed"}`, rec.Body.String())
}

func TestListsScopedToAssessment(t *testing.T) {
	h := newHarness(t)
	a := h.seed(caller, "A")
	b := h.seed(caller, "B")
	theirs := h.seed("user-2", "Theirs")

	h.db.findings = []*types.Finding{
		{ID: 1, AssessmentID: a.ID, Title: "a-1", Severity: types.SeverityMajor},
		{ID: 2, AssessmentID: b.ID, Title: "b-1", Severity: types.SeverityCritical},
		{ID: 3, AssessmentID: a.ID, Title: "a-2", Severity: types.SeverityMinor},
	}
	h.db.messages = []*types.ConversationMessage{
		{ID: 1, AssessmentID: a.ID, Role: types.MessageRoleUser, Content: "hello"},
		{ID: 2, AssessmentID: b.ID, Role: types.MessageRoleUser, Content: "other"},
	}

	rec := h.do(http.MethodGet, fmt.Sprintf("/api/findings.list?assessmentId=%d", a.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var findings []types.Finding
	decodeBody(t, rec, &findings)
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, a.ID, f.AssessmentID)
	}

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/conversation.history?assessmentId=%d", a.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []types.ConversationMessage
	decodeBody(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Content)

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/images.list?assessmentId=%d", a.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/findings.list?assessmentId=%d", theirs.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportGenerate(t *testing.T) {
	h := newHarness(t)
	a := h.seed(caller, "Riverside/Offices")
	h.db.findings = []*types.Finding{{AssessmentID: a.ID, Category: "Doors", Title: "<b>Wedged</b>", Severity: types.SeverityCritical}}

	rec := h.postJSON("/api/report.generatePDF", fmt.Sprintf(`{"assessmentId":%d}`, a.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got types.ReportResult
	decodeBody(t, rec, &got)
	assert.True(t, got.Success)
	assert.Equal(t, "Fire_Risk_Assessment_Riverside_Offices_2025-06-01.html", got.FileName)
	assert.Equal(t, "Report generated successfully", got.Message)
	assert.Contains(t, got.HTMLContent, "Overall Risk Level: Critical")
	assert.Contains(t, got.HTMLContent, "&lt;b&gt;Wedged&lt;/b&gt;")

	rec = h.postJSON("/api/report.generatePDF", `{"assessmentId":9999}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Assessment not found")
}

func multipartBody(t *testing.T, fields map[string]string, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	h := newHarness(t)
	a := h.seed(caller, "Depot")
	id := fmt.Sprint(a.ID)

	t.Run("too large", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"assessmentId": id}, "big.jpg", "image/jpeg", make([]byte, 20<<20))
		rec := h.do(http.MethodPost, "/api/upload-image", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, h.objects.keys)
	})

	t.Run("not an image", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"assessmentId": id}, "notes.txt", "text/plain", []byte("hello"))
		rec := h.do(http.MethodPost, "/api/upload-image", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Only image files are allowed")
		assert.Empty(t, h.objects.keys)
	})

	t.Run("no file", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"assessmentId": id}, "", "", nil)
		rec := h.do(http.MethodPost, "/api/upload-image", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No file uploaded")
	})

	t.Run("bad assessment id", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"assessmentId": "abc"}, "a.png", "image/png", []byte("png"))
		rec := h.do(http.MethodPost, "/api/upload-image", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid assessment ID")
	})

	t.Run("valid", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"assessmentId": id}, "door.png", "image/png", bytes.Repeat([]byte{1}, 2048))
		rec := h.do(http.MethodPost, "/api/upload-image", body, ct)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got types.UploadResult
		decodeBody(t, rec, &got)
		assert.True(t, got.Success)

		require.Len(t, h.objects.keys, 1)
		require.Len(t, h.db.images, 1)
		assert.Equal(t, got.ImageURL, h.db.images[0].ImageURL)
		assert.Equal(t, "https://cdn.example.com/"+h.objects.keys[0], got.ImageURL)
		assert.True(t, strings.HasPrefix(h.objects.keys[0], fmt.Sprintf("assessments/%d/images/", a.ID)))
	})
}

func TestPagesRender(t *testing.T) {
	h := newHarness(t)
	a := h.seed(caller, "Riverside <Offices>")
	h.db.messages = []*types.ConversationMessage{{AssessmentID: a.ID, Role: types.MessageRoleAssistant, Content: "Are fire doors kept shut?"}}
	h.db.findings = []*types.Finding{{AssessmentID: a.ID, Title: "Blocked exit", Category: "Escape Routes", Severity: types.SeverityMajor}}

	rec := h.do(http.MethodGet, "/assessments", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Riverside &lt;Offices&gt;")
	assert.Contains(t, rec.Body.String(), "assessor@example.com")

	rec = h.do(http.MethodGet, fmt.Sprintf("/assessments/%d", a.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Are fire doors kept shut?")
	assert.Contains(t, body, "Blocked exit")
	assert.Contains(t, body, "Overall risk: High")

	other := h.seed("user-2", "Theirs")
	rec = h.do(http.MethodGet, fmt.Sprintf("/assessments/%d", other.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodGet, "/assessments/not-a-number", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPageCreateAndChat(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/assessments", strings.NewReader("building_name=Warehouse+7&building_type=industrial"), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, h.db.assessments, 1)

	var created *types.Assessment
	for _, a := range h.db.assessments {
		created = a
	}
	assert.Equal(t, "Warehouse 7", created.BuildingName)
	assert.Equal(t, fmt.Sprintf("/assessments/%d", created.ID), rec.Header().Get("Location"))

	rec = h.do(http.MethodPost, fmt.Sprintf("/assessments/%d/chat", created.ID), strings.NewReader("message=Racking+blocks+exit"), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, h.pipeline.inputs, 1)
	assert.Equal(t, "Racking blocks exit", h.pipeline.inputs[0].Message)
	assert.Nil(t, h.pipeline.inputs[0].AudioTranscript)
}

func TestReportDownload(t *testing.T) {
	h := newHarness(t)
	a := h.seed(caller, "Depot")

	rec := h.do(http.MethodGet, fmt.Sprintf("/assessments/%d/report", a.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Fire_Risk_Assessment_Depot_2025-06-01.html"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Fire Risk Assessment Report")
}

func TestRegistrationFieldErrors(t *testing.T) {
	in := registration{Name: "", Email: "not-an-email", Password: "short", ConfirmPassword: "different"}
	errs := in.fieldErrors()
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "confirm_password")

	ok := registration{Name: "Sam", Email: "sam@example.com", Password: "Sufficiently-L0ng", ConfirmPassword: "Sufficiently-L0ng"}
	assert.Empty(t, ok.fieldErrors())
}
