package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/voxsplit/backend/internal/models"
	"github.com/voxsplit/backend/internal/ports"
)

const defaultTranscriptionURL = "https://api.openai.com/v1/audio/transcriptions"

// WhisperClient submits one audio file to the speech provider and asks for
// segment-level timestamps (verbose_json).
type WhisperClient struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

func NewWhisperClient(apiKey string) ports.STTService {
	return &WhisperClient{
		apiKey: apiKey,
		model:  "whisper-1",
		url:    defaultTranscriptionURL,
		client: &http.Client{Timeout: 10 * time.Minute},
	}
}

type whisperResponse struct {
	Duration float64          `json:"duration"`
	Segments []models.Segment `json:"segments"`
	Text     string           `json:"text"`
}

func (c *WhisperClient) Transcribe(ctx context.Context, path string) ([]models.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("whisper: open %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", c.model); err != nil {
		return nil, err
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("whisper: read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper http %d: %s", resp.StatusCode, trim(string(raw), 180))
	}

	var parsed whisperResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("whisper response: %w", err)
	}
	return parsed.Segments, nil
}
