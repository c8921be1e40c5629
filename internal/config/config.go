package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/chadiek/interview-coach/internal/apperr"
)

// Transcription and speech providers.
const (
	TranscriptionWhisper    = "whisper"
	TranscriptionAssemblyAI = "assemblyai"

	TTSOpenAI     = "openai"
	TTSElevenLabs = "elevenlabs"
	TTSDeepgram   = "deepgram"
	TTSNone       = "none"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string `env:"HTTP_ADDRESS" envDefault:":8080"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	GroqAPIKey string `env:"GROQ_API_KEY"`
	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	ChatModel  string `env:"CHAT_MODEL" envDefault:"llama-3.3-70b-versatile"`

	TranscriptionProvider string `env:"TRANSCRIPTION_PROVIDER" envDefault:"whisper"`
	TranscriptionModel    string `env:"TRANSCRIPTION_MODEL" envDefault:"whisper-large-v3-turbo"`
	AssemblyAIKey         string `env:"ASSEMBLYAI_API_KEY"`
	ScratchDir            string `env:"SCRATCH_DIR"`

	TTSProvider       string `env:"TTS_PROVIDER" envDefault:"openai"`
	TTSModel          string `env:"TTS_MODEL" envDefault:"playai-tts"`
	TTSVoice          string `env:"TTS_VOICE" envDefault:"Fritz-PlayAI"`
	TTSLanguage       string `env:"TTS_LANGUAGE" envDefault:"en"`
	ElevenLabsKey     string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsVoiceID string `env:"ELEVENLABS_VOICE_ID"`
	DeepgramKey       string `env:"DEEPGRAM_API_KEY"`
	DeepgramModel     string `env:"DEEPGRAM_MODEL" envDefault:"aura-2-thalia-en"`

	QuestionTimeout time.Duration `env:"QUESTION_TIMEOUT" envDefault:"200s"`
	MaxQuestions    int           `env:"MAX_QUESTIONS" envDefault:"20"`
	SessionIdleTTL  time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`
	EventsPerSecond float64       `env:"EVENTS_PER_SECOND" envDefault:"2"`
	EventBurst      int           `env:"EVENT_BURST" envDefault:"5"`
}

// Load reads an optional .env file plus the environment and validates the result.
// envFile may be empty, in which case ".env" in the working directory is tried.
func Load(envFile string) (Config, error) {
	files := []string{}
	if envFile != "" {
		files = append(files, envFile)
	}
	if err := godotenv.Load(files...); err != nil {
		if envFile != "" {
			return Config{}, apperr.Configuration("env-file", "load %s: %v", envFile, err)
		}
		slog.Debug("no .env file loaded", "error", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, apperr.Configuration("environment", "%v", err)
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first missing or inconsistent setting as a ConfigurationError.
func (c Config) Validate() error {
	if strings.TrimSpace(c.GroqAPIKey) == "" {
		return apperr.Configuration("GROQ_API_KEY", "not set; add it to the environment or .env file")
	}
	if c.ChatModel == "" {
		return apperr.Configuration("CHAT_MODEL", "must not be empty")
	}
	if c.MaxQuestions <= 0 {
		return apperr.Configuration("MAX_QUESTIONS", "must be positive, got %d", c.MaxQuestions)
	}
	if c.QuestionTimeout <= 0 {
		return apperr.Configuration("QUESTION_TIMEOUT", "must be positive, got %s", c.QuestionTimeout)
	}

	switch c.TranscriptionProvider {
	case TranscriptionWhisper:
	case TranscriptionAssemblyAI:
		if c.AssemblyAIKey == "" {
			return apperr.Configuration("ASSEMBLYAI_API_KEY", "required when TRANSCRIPTION_PROVIDER=%s", c.TranscriptionProvider)
		}
	default:
		return apperr.Configuration("TRANSCRIPTION_PROVIDER", "unknown provider %q", c.TranscriptionProvider)
	}

	switch c.TTSProvider {
	case TTSOpenAI, TTSNone:
	case TTSElevenLabs:
		if c.ElevenLabsKey == "" || c.ElevenLabsVoiceID == "" {
			return apperr.Configuration("ELEVENLABS_API_KEY", "ELEVENLABS_API_KEY and ELEVENLABS_VOICE_ID are required when TTS_PROVIDER=%s", c.TTSProvider)
		}
	case TTSDeepgram:
		if c.DeepgramKey == "" {
			return apperr.Configuration("DEEPGRAM_API_KEY", "required when TTS_PROVIDER=%s", c.TTSProvider)
		}
	default:
		return apperr.Configuration("TTS_PROVIDER", "unknown provider %q", c.TTSProvider)
	}
	return nil
}

// KeyPreview returns the first characters of the API key for diagnostics.
func (c Config) KeyPreview() string {
	k := c.GroqAPIKey
	if len(k) > 5 {
		k = k[:5]
	}
	return k + "..."
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *apperr.ConfigurationError
	return errors.As(err, &ce)
}

func (c Config) String() string {
	return fmt.Sprintf("addr=%s model=%s stt=%s tts=%s timeout=%s max_questions=%d",
		c.HTTPAddress, c.ChatModel, c.TranscriptionProvider, c.TTSProvider, c.QuestionTimeout, c.MaxQuestions)
}
