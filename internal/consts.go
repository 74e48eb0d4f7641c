package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "fra_access_token"
	COOKIE_REDIRECT_NAME     = "fra_redirect"
)
