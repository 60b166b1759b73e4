package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort = 5000
	defaultEnv  = "development"

	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel    = "gemini-1.5-flash"
	defaultGeminiTimeout  = 30

	defaultMaxUploadSizeMB = 5
	defaultPromptMaxChars  = 8000

	// GeminiAPIKeyEnv overrides gemini.api_key. The credential normally
	// arrives through the environment rather than the config file.
	GeminiAPIKeyEnv = "GEMINI_API_KEY"
)
