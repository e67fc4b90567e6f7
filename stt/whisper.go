package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/voxpulse/voxpulse/logger"
)

// WhisperClient talks to a whisper-webservice instance over HTTP: each
// window goes up as a multipart WAV, the transcription comes back as JSON.
type WhisperClient struct {
	baseURL    string
	language   string
	httpClient *http.Client
	log        *logger.Logger
}

var _ Transcriber = (*WhisperClient)(nil)

type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		ID    int     `json:"id"`
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments,omitempty"`
}

func NewWhisperClient(baseURL, language string, log *logger.Logger) (*WhisperClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("whisper base url is empty")
	}
	if language == "" {
		language = "en"
	}
	return &WhisperClient{
		baseURL:  baseURL,
		language: language,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}, nil
}

func (w *WhisperClient) Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]Segment, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	wavData := encodeWAV(samples, sampleRate)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio_file", "window.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	requestURL := fmt.Sprintf("%s/asr?encode=true&task=transcribe&language=%s&output=json", w.baseURL, w.language)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper service returned status %d: %s", resp.StatusCode, string(responseBody))
	}

	var parsed whisperResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		// Some deployments answer with plain text.
		if text := strings.TrimSpace(string(responseBody)); text != "" {
			return []Segment{{Text: text}}, nil
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var segments []Segment
	for _, seg := range parsed.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			segments = append(segments, Segment{Text: text})
		}
	}
	if len(segments) == 0 {
		if text := strings.TrimSpace(parsed.Text); text != "" {
			segments = append(segments, Segment{Text: text})
		}
	}

	w.log.Debugf("whisper returned %d segment(s)", len(segments))
	return segments, nil
}

func (w *WhisperClient) Close() error {
	w.httpClient.CloseIdleConnections()
	return nil
}
