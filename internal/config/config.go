package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Persistence
	DatabasePath string `yaml:"database_path"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`

	// OCR
	OCREngine         string `yaml:"ocr_engine"` // tesseract, vision or none
	OCRLang           string `yaml:"ocr_lang"`
	OCRDPI            int    `yaml:"ocr_dpi"`
	GoogleCredentials string `yaml:"google_application_credentials"`

	// Contexts
	MaxWords         int      `yaml:"max_words"`
	MinSentences     int      `yaml:"min_sentences"`
	WindowSize       int      `yaml:"window_size"` // 0 disables sentence windows
	DedupThreshold   float64  `yaml:"dedup_threshold"`
	TitlePrefix      bool     `yaml:"title_prefix"`
	DefaultTitle     string   `yaml:"default_title"`
	SentenceLanguage string   `yaml:"sentence_language"`
	ChapterWords     []string `yaml:"chapter_words"`

	// Quiz
	TotalQuestions int    `yaml:"total_questions"`
	MaxAnswers     int    `yaml:"max_answers"`
	MaxPerContext  int    `yaml:"max_per_context"`
	RandomSeed     uint64 `yaml:"random_seed"` // 0 seeds from the clock

	// Models
	QuestionProvider   string `yaml:"question_provider"`
	QuestionModel      string `yaml:"question_model"`
	DistractorProvider string `yaml:"distractor_provider"`
	DistractorModel    string `yaml:"distractor_model"`
	EnableDistractors  bool   `yaml:"enable_distractors"`
	EmbedProvider      string `yaml:"embed_provider"`
	EmbedModel         string `yaml:"embed_model"`

	// Provider credentials
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	CohereAPIKey    string `yaml:"cohere_api_key"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                 "8090",
		DatabasePath:         "docquiz.db",
		WorkerCount:          1,
		MaxQueueSize:         100,
		MaxUploadBytes:       52428800, // 50MB
		JobTTL:               time.Hour,
		PDFFallbackPdftotext: true,

		OCREngine: "tesseract",
		OCRLang:   "eng",
		OCRDPI:    300,

		MaxWords:         200,
		MinSentences:     2,
		WindowSize:       6,
		DedupThreshold:   0.85,
		TitlePrefix:      true,
		SentenceLanguage: "english",
		ChapterWords:     []string{"chapter", "chương"},

		TotalQuestions: 20,
		MaxAnswers:     5,
		MaxPerContext:  2,

		QuestionProvider:   "openai",
		QuestionModel:      "gpt-4o-mini",
		DistractorProvider: "openai",
		DistractorModel:    "gpt-4o-mini",
		EnableDistractors:  true,
		EmbedProvider:      "openai",
		EmbedModel:         "text-embedding-3-small",
	}
}

// Load layers the YAML file named by DOCQUIZ_CONFIG (if any) and then
// environment variables over Defaults.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("DOCQUIZ_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("DOCQUIZ_API_KEY", cfg.APIKey)
	cfg.DatabasePath = envOr("DATABASE_PATH", cfg.DatabasePath)
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	cfg.OCREngine = envOr("OCR_ENGINE", cfg.OCREngine)
	cfg.OCRLang = envOr("OCR_LANG", cfg.OCRLang)
	cfg.OCRDPI = envInt("OCR_DPI", cfg.OCRDPI)
	cfg.GoogleCredentials = envOr("GOOGLE_APPLICATION_CREDENTIALS", cfg.GoogleCredentials)

	cfg.MaxWords = envInt("MAX_WORDS", cfg.MaxWords)
	cfg.MinSentences = envInt("MIN_SENTENCES", cfg.MinSentences)
	cfg.WindowSize = envInt("WINDOW_SIZE", cfg.WindowSize)
	cfg.DedupThreshold = envFloat("DEDUP_THRESHOLD", cfg.DedupThreshold)
	cfg.TitlePrefix = envBool("TITLE_PREFIX", cfg.TitlePrefix)
	cfg.DefaultTitle = envOr("DEFAULT_TITLE", cfg.DefaultTitle)
	cfg.SentenceLanguage = envOr("SENTENCE_LANGUAGE", cfg.SentenceLanguage)
	cfg.ChapterWords = envList("CHAPTER_WORDS", cfg.ChapterWords)

	cfg.TotalQuestions = envInt("TOTAL_QUESTIONS", cfg.TotalQuestions)
	cfg.MaxAnswers = envInt("MAX_ANSWERS", cfg.MaxAnswers)
	cfg.MaxPerContext = envInt("MAX_PER_CONTEXT", cfg.MaxPerContext)
	cfg.RandomSeed = uint64(envInt64("RANDOM_SEED", int64(cfg.RandomSeed)))

	cfg.QuestionProvider = envOr("QUESTION_PROVIDER", cfg.QuestionProvider)
	cfg.QuestionModel = envOr("QUESTION_MODEL", cfg.QuestionModel)
	cfg.DistractorProvider = envOr("DISTRACTOR_PROVIDER", cfg.DistractorProvider)
	cfg.DistractorModel = envOr("DISTRACTOR_MODEL", cfg.DistractorModel)
	cfg.EnableDistractors = envBool("ENABLE_DISTRACTORS", cfg.EnableDistractors)
	cfg.EmbedProvider = envOr("EMBED_PROVIDER", cfg.EmbedProvider)
	cfg.EmbedModel = envOr("EMBED_MODEL", cfg.EmbedModel)

	cfg.OpenAIAPIKey = envOr("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = envOr("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.AnthropicAPIKey = envOr("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)
	cfg.GeminiAPIKey = envOr("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.CohereAPIKey = envOr("COHERE_API_KEY", cfg.CohereAPIKey)

	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults replaces out-of-range values with the built-in ones.
func (c *Config) fillDefaults() {
	d := Defaults()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
	if c.OCRDPI <= 0 {
		c.OCRDPI = d.OCRDPI
	}
	if c.MaxWords <= 0 {
		c.MaxWords = d.MaxWords
	}
	if c.MinSentences <= 0 {
		c.MinSentences = d.MinSentences
	}
	if c.WindowSize < 0 {
		c.WindowSize = 0
	}
	if c.TotalQuestions <= 0 {
		c.TotalQuestions = d.TotalQuestions
	}
	if c.MaxAnswers <= 0 {
		c.MaxAnswers = d.MaxAnswers
	}
	if c.MaxPerContext <= 0 {
		c.MaxPerContext = d.MaxPerContext
	}
}

// Validate checks that the configured providers are known and have
// credentials.
func (c Config) Validate() error {
	if c.DedupThreshold <= 0 || c.DedupThreshold > 1 {
		return fmt.Errorf("DEDUP_THRESHOLD must be in (0, 1], got %v", c.DedupThreshold)
	}
	switch c.OCREngine {
	case "tesseract", "vision", "none":
	default:
		return fmt.Errorf("OCR_ENGINE must be tesseract, vision or none, got %q", c.OCREngine)
	}
	if err := c.checkProvider("QUESTION_PROVIDER", c.QuestionProvider, "openai", "anthropic", "gemini"); err != nil {
		return err
	}
	if c.EnableDistractors {
		if err := c.checkProvider("DISTRACTOR_PROVIDER", c.DistractorProvider, "openai", "anthropic", "gemini"); err != nil {
			return err
		}
	}
	return c.checkProvider("EMBED_PROVIDER", c.EmbedProvider, "openai", "cohere", "gemini")
}

// ValidateServer adds the checks only the HTTP service needs.
func (c Config) ValidateServer() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCQUIZ_API_KEY is required")
	}
	return c.Validate()
}

func (c Config) checkProvider(key, provider string, allowed ...string) error {
	known := false
	for _, a := range allowed {
		if provider == a {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), provider)
	}
	switch provider {
	case "openai":
		// Self-hosted OpenAI-compatible servers usually take no key.
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("%s=openai requires OPENAI_API_KEY or OPENAI_BASE_URL", key)
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("%s=anthropic requires ANTHROPIC_API_KEY", key)
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%s=gemini requires GEMINI_API_KEY", key)
		}
	case "cohere":
		if c.CohereAPIKey == "" {
			return fmt.Errorf("%s=cohere requires COHERE_API_KEY", key)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
