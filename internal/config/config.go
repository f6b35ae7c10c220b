package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		ScriptID string `yaml:"script_id"`
		TTL      string `yaml:"ttl"`
	} `yaml:"quiz"`
	TTS   TTSConfig `yaml:"tts"`
	Audio struct {
		CacheTTL   string `yaml:"cache_ttl"`
		MaxEntries int    `yaml:"max_entries"`
	} `yaml:"audio"`
}

// TTSConfig holds the speech provider settings used by the relay.
type TTSConfig struct {
	BaseURL string `yaml:"base_url"`
	ModelID string `yaml:"model_id"`
	Timeout string `yaml:"timeout"`
	APIKey  string `yaml:"api_key"`
	// Voices maps public voice identifiers (simon, lena) to provider voice IDs.
	Voices map[string]string `yaml:"voices"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file yields the defaults plus whatever the environment provides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// LoadDotEnv loads .env from the working directory if present; existing variables win.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" && cfg.Server.Port == "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("ELEVENLABS_API_KEY"); v != "" {
		cfg.TTS.APIKey = v
	}
	if cfg.TTS.Voices == nil {
		cfg.TTS.Voices = make(map[string]string)
	}
	if v := os.Getenv("ELEVENLABS_VOICE_ID_SIMON"); v != "" {
		cfg.TTS.Voices["simon"] = v
	}
	if v := os.Getenv("ELEVENLABS_VOICE_ID_LENA"); v != "" {
		cfg.TTS.Voices["lena"] = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Quiz.ScriptID == "" {
		cfg.Quiz.ScriptID = "miroir-calma"
	}
	if cfg.TTS.BaseURL == "" {
		cfg.TTS.BaseURL = "https://api.elevenlabs.io"
	}
	if cfg.TTS.ModelID == "" {
		cfg.TTS.ModelID = "eleven_multilingual_v2"
	}
	if cfg.Audio.MaxEntries == 0 {
		cfg.Audio.MaxEntries = 32
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
