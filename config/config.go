package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is assembled from the environment (optionally a .env file).
// Defaults: 16 kHz mono capture, 3 s windows with half overlap, 100 ms
// pulse resets, OSC to localhost:9000.
type Config struct {
	SampleRate int
	BlockSize  int
	Channels   int
	DeviceID   int

	WindowSeconds float64
	Overlap       float64
	ResetDelay    time.Duration
	QueueBlocks   int
	JoinTimeout   time.Duration

	OSCHost     string
	OSCPort     int
	TextAddress string

	// Engine selects the transcription backend: "whisper" or "speechkit".
	Engine     string
	WhisperURL string
	Language   string

	IamToken string
	FolderID string

	// KeywordFile optionally overrides the built-in keyword table with a
	// JSON object of surface form → OSC address.
	KeywordFile string

	Debug bool
}

func Load() (*Config, error) {
	// A .env file is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg := &Config{
		SampleRate:    getInt("SAMPLE_RATE", 16000),
		BlockSize:     getInt("BLOCK_SIZE", 1024),
		Channels:      getInt("CHANNELS", 1),
		DeviceID:      getInt("DEVICE_ID", -1),
		WindowSeconds: getFloat("WINDOW_SECONDS", 3.0),
		Overlap:       getFloat("WINDOW_OVERLAP", 0.5),
		ResetDelay:    getDuration("RESET_DELAY", 100*time.Millisecond),
		QueueBlocks:   getInt("QUEUE_BLOCKS", 256),
		JoinTimeout:   getDuration("JOIN_TIMEOUT", 2*time.Second),
		OSCHost:       getString("OSC_HOST", "127.0.0.1"),
		OSCPort:       getInt("OSC_PORT", 9000),
		TextAddress:   getString("TEXT_ADDRESS", "/transcription/text"),
		Engine:        getString("STT_ENGINE", "whisper"),
		WhisperURL:    getString("WHISPER_URL", "http://127.0.0.1:9090"),
		Language:      getString("LANGUAGE", "en"),
		IamToken:      os.Getenv("IAM_TOKEN"),
		FolderID:      os.Getenv("FOLDER_ID"),
		KeywordFile:   os.Getenv("KEYWORD_FILE"),
		Debug:         getBool("DEBUG", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("block size must be positive, got %d", c.BlockSize)
	}
	if c.Channels != 1 {
		return fmt.Errorf("only mono capture is supported, got %d channels", c.Channels)
	}
	if c.WindowSeconds <= 0 {
		return fmt.Errorf("window duration must be positive, got %v", c.WindowSeconds)
	}
	if c.Overlap < 0 || c.Overlap >= 1 {
		return fmt.Errorf("window overlap must be in [0, 1), got %v", c.Overlap)
	}
	if c.ResetDelay <= 0 {
		return fmt.Errorf("reset delay must be positive, got %v", c.ResetDelay)
	}
	if c.QueueBlocks < 1 {
		return fmt.Errorf("queue capacity must be at least one block, got %d", c.QueueBlocks)
	}
	if c.OSCPort <= 0 || c.OSCPort > 65535 {
		return fmt.Errorf("osc port %d out of range", c.OSCPort)
	}
	switch c.Engine {
	case "whisper":
		if c.WhisperURL == "" {
			return fmt.Errorf("whisper engine needs WHISPER_URL")
		}
	case "speechkit":
		if c.IamToken == "" || c.FolderID == "" {
			return fmt.Errorf("speechkit engine needs IAM_TOKEN and FOLDER_ID")
		}
	default:
		return fmt.Errorf("unknown stt engine %q", c.Engine)
	}
	return nil
}

// WindowSamples is the analysis window capacity in samples.
func (c *Config) WindowSamples() int {
	return int(c.WindowSeconds * float64(c.SampleRate))
}

// LoadKeywords reads a JSON keyword file: {"word": "/osc/address", ...}.
func LoadKeywords(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword file: %w", err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse keyword file: %w", err)
	}
	return entries, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
