package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"firerisk/internal"
	"firerisk/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	_, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
	if err == nil {
		http.Redirect(w, r, "/assessments", http.StatusSeeOther)
		return
	}

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Login"},
	}
	if r.URL.Query().Get("confirmed") == "true" {
		data.Message = "Account confirmed. You can log in now."
	}

	if err := s.renderTemplate(w, r, "page.login", data); err != nil {
		s.logger.WithError(err).Error("failed to render login page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Login"},
		Email:        email,
	}

	resp, err := s.cognitoClient.InitiateAuth(r.Context(), &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil || resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		s.logger.WithError(err).WithField("email", email).Info("login failed")

		data.Error = loginErrorMessage(err)
		w.WriteHeader(http.StatusUnauthorized)
		if renderErr := s.renderTemplate(w, r, "page.login", data); renderErr != nil {
			s.logger.WithError(renderErr).Error("failed to render login page with error")
		}
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)
	expiresIn := int(resp.AuthenticationResult.ExpiresIn)

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, accessToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.internalServerError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   expiresIn,
		Path:     "/",
	})

	// login may have been triggered by an unauthenticated page visit
	if redirectCookie, err := r.Cookie(internal.COOKIE_REDIRECT_NAME); err == nil && strings.HasPrefix(redirectCookie.Value, "/") {
		s.clearRedirectCookie(w)
		http.Redirect(w, r, redirectCookie.Value, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/assessments", http.StatusSeeOther)
}

func loginErrorMessage(err error) string {
	var notConfirmed *ctypes.UserNotConfirmedException
	if errors.As(err, &notConfirmed) {
		return "Please confirm your account before logging in."
	}
	return "Invalid email or password."
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	s.endSession(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Service) handleAPILogout(w http.ResponseWriter, r *http.Request) {
	s.endSession(w, r)
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// endSession clears the session cookie and revokes the Cognito tokens when
// the cookie can still be read. Revocation failures only get logged.
func (s *Service) endSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME); err == nil {
		var accessToken string
		if err := s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &accessToken); err == nil {
			_, err := s.cognitoClient.GlobalSignOut(r.Context(), &cognitoidentityprovider.GlobalSignOutInput{
				AccessToken: aws.String(accessToken),
			})
			if err != nil {
				s.logger.WithError(err).Warn("failed to revoke cognito session")
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func (s *Service) setRedirectCookie(w http.ResponseWriter, path string, age time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    path,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})
}

func (s *Service) clearRedirectCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
