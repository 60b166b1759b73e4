package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"` // "development" | "production"
	Timezone       string             `yaml:"timezone"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	Paths          RuntimePathsConfig `yaml:"paths"`
	Gemini         GeminiConfig       `yaml:"gemini"`
	Study          StudyConfig        `yaml:"study"`
}

// RuntimePathsConfig locates writable runtime directories.
type RuntimePathsConfig struct {
	Logs    string `yaml:"logs"`
	Uploads string `yaml:"uploads"`
}

// GeminiConfig configures the upstream generateContent endpoint.
type GeminiConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// StudyConfig bounds the upload and prompt pipeline.
type StudyConfig struct {
	MaxUploadSizeMB int `yaml:"max_upload_size_mb"`
	PromptMaxChars  int `yaml:"prompt_max_chars"`
}

type rawAppConfig struct {
	Port               int            `yaml:"port"`
	Env                string         `yaml:"env"`
	Timezone           string         `yaml:"timezone"`
	TZ                 string         `yaml:"tz"`
	AllowedOrigins     []string       `yaml:"allowed_origins"`
	CORSAllowedOrigins []string       `yaml:"cors_allowed_origins"`
	Paths              rawPathsConfig `yaml:"paths"`
	LogDir             string         `yaml:"log_dir"`
	UploadDir          string         `yaml:"upload_dir"`
	Gemini             GeminiConfig   `yaml:"gemini"`
	Study              StudyConfig    `yaml:"study"`
}

type rawPathsConfig struct {
	Logs    string `yaml:"logs"`
	Uploads string `yaml:"uploads"`
}
