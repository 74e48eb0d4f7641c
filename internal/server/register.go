package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"firerisk/internal"
	"firerisk/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// registration is the assessor sign-up form.
type registration struct {
	Name            string `form:"name"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

var (
	hasUpperReg  = regexp.MustCompile(`[A-Z]`)
	hasLowerReg  = regexp.MustCompile(`[a-z]`)
	hasDigitReg  = regexp.MustCompile(`[0-9]`)
	hasSymbolReg = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func (in *registration) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
}

// fieldErrors returns one message per invalid form field.
func (in *registration) fieldErrors() map[string]string {
	errs := map[string]string{}

	if in.Name == "" {
		errs["name"] = "Name is required."
	}

	if in.Email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if in.Password != in.ConfirmPassword {
		errs["confirm_password"] = "Passwords do not match."
	}

	strong := len(in.Password) >= 12 &&
		hasUpperReg.MatchString(in.Password) &&
		hasLowerReg.MatchString(in.Password) &&
		hasDigitReg.MatchString(in.Password) &&
		hasSymbolReg.MatchString(in.Password)
	if !strong {
		errs["password"] = "Password must be at least 12 characters and include uppercase, lowercase, number, and symbol."
	}

	return errs
}

func (s *Service) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME); err == nil {
		http.Redirect(w, r, "/assessments", http.StatusSeeOther)
		return
	}

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Create Assessor Account"},
	}

	if err := s.renderTemplate(w, r, "page.register", data); err != nil {
		s.logger.WithError(err).Error("failed to render register page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse register form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	var in registration
	if err := decoder.Decode(&in, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode register form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}
	in.normalize()

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Create Assessor Account"},
		Name:         in.Name,
		Email:        in.Email,
	}

	data.FieldErrors = in.fieldErrors()
	if len(data.FieldErrors) > 0 {
		data.Error = "Please fix the highlighted fields."
		s.renderRegister(w, r, data)
		return
	}

	attributes := []ctypes.AttributeType{
		{Name: aws.String("email"), Value: aws.String(in.Email)},
		{Name: aws.String("name"), Value: aws.String(in.Name)},
	}

	_, err := s.cognitoClient.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId:       aws.String(s.config.CognitoClientID),
		Username:       aws.String(in.Email),
		Password:       aws.String(in.Password),
		UserAttributes: attributes,
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to sign up assessor")

		data.Error, data.FieldErrors = s.mapCognitoSignUpError(err)
		s.renderRegister(w, r, data)
		return
	}

	v := url.Values{}
	v.Set("email", in.Email)
	http.Redirect(w, r, fmt.Sprintf("/register/confirm?%s", v.Encode()), http.StatusSeeOther)
}

func (s *Service) renderRegister(w http.ResponseWriter, r *http.Request, data *types.RegisterPageData) {
	w.WriteHeader(http.StatusBadRequest)
	if err := s.renderTemplate(w, r, "page.register", data); err != nil {
		s.logger.WithError(err).Error("failed to render register page with errors")
	}
}

func (s *Service) handleGetRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	data := &types.ConfirmRegisterPageData{
		BasePageData: types.BasePageData{Title: "Confirm Your Account"},
		Email:        strings.TrimSpace(r.URL.Query().Get("email")),
	}

	if err := s.renderTemplate(w, r, "page.register.confirm", data); err != nil {
		s.logger.WithError(err).Error("failed to render register confirm page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	code := strings.TrimSpace(r.FormValue("code"))

	data := &types.ConfirmRegisterPageData{
		BasePageData: types.BasePageData{Title: "Confirm Your Account"},
		Email:        email,
	}

	_, err := s.cognitoClient.ConfirmSignUp(r.Context(), &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(s.config.CognitoClientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to confirm assessor sign up")

		var codeMismatch *ctypes.CodeMismatchException
		if errors.As(err, &codeMismatch) {
			data.Error = "Invalid confirmation code. Please check the code and try again."
		} else {
			data.Error = "Unable to confirm account. Please try again."
		}

		w.WriteHeader(http.StatusBadRequest)
		if err := s.renderTemplate(w, r, "page.register.confirm", data); err != nil {
			s.logger.WithError(err).Error("failed to render register confirm page with error")
		}
		return
	}

	http.Redirect(w, r, "/login?confirmed=true", http.StatusSeeOther)
}

func (s *Service) mapCognitoSignUpError(err error) (string, map[string]string) {
	fieldErrs := map[string]string{}

	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		fieldErrs["password"] = "Password must include uppercase, lowercase, number, and symbol (min 12)."
		return "Please fix the highlighted fields.", fieldErrs
	}

	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		fieldErrs["email"] = "An account with this email already exists."
		return "Try logging in instead.", fieldErrs
	}

	var invalidParam *ctypes.InvalidParameterException
	if errors.As(err, &invalidParam) {
		return "Some details are invalid. Please review and try again.", fieldErrs
	}

	return "Unable to create account right now. Please try again.", fieldErrs
}
