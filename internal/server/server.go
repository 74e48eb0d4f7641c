package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"firerisk/internal/upload"
	"firerisk/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type AssessmentStore interface {
	CreateAssessment(ctx context.Context, assessment *types.Assessment) error
	Assessment(ctx context.Context, assessmentID int64) (*types.Assessment, error)
	AssessmentsByUser(ctx context.Context, userID string) ([]*types.Assessment, error)
	UpdateAssessment(ctx context.Context, assessmentID int64, patch *types.AssessmentPatch) error
}

type ConversationStore interface {
	History(ctx context.Context, assessmentID int64) ([]*types.ConversationMessage, error)
}

type FindingStore interface {
	FindingsByAssessment(ctx context.Context, assessmentID int64) ([]*types.Finding, error)
}

type ImageStore interface {
	ImagesByAssessment(ctx context.Context, assessmentID int64) ([]*types.AssessmentImage, error)
}

type ChatPipeline interface {
	Chat(ctx context.Context, in *types.ChatInput) (*types.ChatResult, error)
}

type ImageIntake interface {
	Accept(ctx context.Context, assessmentID int64, file *upload.File) (*types.UploadResult, error)
}

type cognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template

	assessments   AssessmentStore
	conversations ConversationStore
	findings      FindingStore
	images        ImageStore
	pipeline      ChatPipeline
	intake        ImageIntake

	cognitoClient cognitoAPI
	cookie        *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	// authenticate resolves the caller for protected routes.
	authenticate func(r *http.Request) (userID, email string, err error)
	now          func() time.Time

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognitoClient cognitoAPI,
	assessments AssessmentStore,
	conversations ConversationStore,
	findings FindingStore,
	images ImageStore,
	pipeline ChatPipeline,
	intake ImageIntake,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie block key: %w", err)
	}

	s := &Service{
		logger:        logger,
		config:        config,
		cognitoClient: cognitoClient,
		cookie:        securecookie.New(hashKey, blockKey),

		assessments:   assessments,
		conversations: conversations,
		findings:      findings,
		images:        images,
		pipeline:      pipeline,
		intake:        intake,

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		now:       time.Now,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}
	s.authenticate = s.authenticateCookie

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/register", s.handleGetRegister, http.MethodGet)
	r.HandleFunc("/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/register/confirm", s.handleGetRegisterConfirm, http.MethodGet)
	r.HandleFunc("/register/confirm", s.handlePostRegisterConfirm, http.MethodPost)
	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)
	r.HandleFunc("/api/auth.logout", s.handleAPILogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/assessments", s.handleGetDashboard, http.MethodGet)
		r.HandleFunc("/assessments", s.handlePostAssessment, http.MethodPost)
		r.HandleFunc("/assessments/:id", s.handleGetAssessment, http.MethodGet)
		r.HandleFunc("/assessments/:id/chat", s.handlePostChat, http.MethodPost)
		r.HandleFunc("/assessments/:id/images", s.handlePostImage, http.MethodPost)
		r.HandleFunc("/assessments/:id/report", s.handleGetReport, http.MethodGet)

		r.HandleFunc("/api/assessment.create", s.handleAssessmentCreate, http.MethodPost)
		r.HandleFunc("/api/assessment.list", s.handleAssessmentList, http.MethodGet)
		r.HandleFunc("/api/assessment.get", s.handleAssessmentGet, http.MethodGet)
		r.HandleFunc("/api/assessment.update", s.handleAssessmentUpdate, http.MethodPost)
		r.HandleFunc("/api/conversation.chat", s.handleConversationChat, http.MethodPost)
		r.HandleFunc("/api/conversation.history", s.handleConversationHistory, http.MethodGet)
		r.HandleFunc("/api/findings.list", s.handleFindingsList, http.MethodGet)
		r.HandleFunc("/api/images.list", s.handleImagesList, http.MethodGet)
		r.HandleFunc("/api/report.generatePDF", s.handleReportGenerate, http.MethodPost)
		r.HandleFunc("/api/upload-image", s.handleUploadImage, http.MethodPost)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefOr": func(s *string, defaultVal string) string {
			if s == nil || *s == "" {
				return defaultVal
			}
			return *s
		},
		"date": func(t time.Time) string {
			return t.Format("2 Jan 2006")
		},
		"datetime": func(t time.Time) string {
			return t.Format("2 Jan 2006 15:04")
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}

// ownedAssessment loads an assessment and hides it from anyone but its owner.
func (s *Service) ownedAssessment(ctx context.Context, assessmentID int64) (*types.Assessment, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	assessment, err := s.assessments.Assessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	if assessment.UserID != userID {
		return nil, types.ErrAssessmentNotFound
	}

	return assessment, nil
}
