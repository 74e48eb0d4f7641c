package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"fire_risk"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"120"`

	// Cognito Auth
	CognitoClientID  string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL string `envconfig:"COGNITO_ISSUER_URL"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Image storage. "s3" uses the default AWS credential chain, "minio" the
	// static keys below.
	StorageBackend     string `envconfig:"STORAGE_BACKEND" default:"s3"`
	S3BucketName       string `envconfig:"S3_BUCKET_NAME"`
	S3PublicBaseURL    string `envconfig:"S3_PUBLIC_BASE_URL"`
	MinioEndpoint      string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey     string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey     string `envconfig:"MINIO_SECRET_KEY"`
	MinioUseSSL        bool   `envconfig:"MINIO_USE_SSL" default:"true"`
	MinioPublicBaseURL string `envconfig:"MINIO_PUBLIC_BASE_URL"`

	// LLM provider: "openai" for any OpenAI-compatible chat completions
	// endpoint, "gemini" for the Gemini API.
	LLMProvider string `envconfig:"LLM_PROVIDER" default:"openai"`
	LLMBaseURL  string `envconfig:"LLM_BASE_URL" default:"https://api.openai.com/v1"`
	LLMAPIKey   string `envconfig:"LLM_API_KEY"`
	LLMModel    string `envconfig:"LLM_MODEL"`
}
