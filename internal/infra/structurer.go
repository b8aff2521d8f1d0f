package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/voxsplit/backend/internal/models"
	"github.com/voxsplit/backend/internal/ports"
)

const defaultChatCompletionsURL = "https://api.openai.com/v1/chat/completions"

const structuringPrompt = `You are an intelligent assistant that processes audio transcripts.
I will provide a list of transcript segments with timestamps.
Your task is to:
1. Group these segments into logical chunks based on context and topic shifts.
2. Generate a concise and descriptive title for each chunk.
3. Combine the text of the segments to form the "transcript" for the chunk.
4. Determine the "start_time" (start of the first segment in the chunk) and "end_time" (end of the last segment in the chunk).

Return the result as a JSON object with a single key "chunks", which is a list of objects.
Each object must have the following keys: "title", "start_time", "end_time", "transcript".`

// StructurerClient asks the language provider to group transcript segments
// into titled chunks. Transport and HTTP failures are errors; a response that
// does not match the agreed shape degrades to zero chunks.
type StructurerClient struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

func NewStructurerClient(apiKey string) ports.StructuringService {
	return &StructurerClient{
		apiKey: apiKey,
		model:  "gpt-4o-mini",
		url:    defaultChatCompletionsURL,
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *StructurerClient) Structure(ctx context.Context, segments []models.Segment) ([]models.ChunkDraft, error) {
	payload, err := json.Marshal(segments)
	if err != nil {
		return nil, err
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: structuringPrompt},
			{Role: "user", Content: string(payload)},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	j, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(j))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("structurer request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("structurer http %d: %s", resp.StatusCode, trim(string(raw), 180))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("structurer response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("structurer response: no choices")
	}

	return parseChunks(parsed.Choices[0].Message.Content), nil
}

// parseChunks tolerates a misbehaving model. A body that is not the agreed
// {"chunks": [...]} object yields zero chunks; entries missing either
// timestamp are dropped individually instead of failing the call.
func parseChunks(content string) []models.ChunkDraft {
	var wrapper struct {
		Chunks []struct {
			Title      string   `json:"title"`
			Transcript string   `json:"transcript"`
			StartTime  *float64 `json:"start_time"`
			EndTime    *float64 `json:"end_time"`
		} `json:"chunks"`
	}
	if err := json.Unmarshal([]byte(content), &wrapper); err != nil {
		log.Printf("[STRUCTURER][WARN] undecodable response: %v", err)
		return nil
	}

	out := make([]models.ChunkDraft, 0, len(wrapper.Chunks))
	for _, c := range wrapper.Chunks {
		if c.StartTime == nil || c.EndTime == nil {
			log.Printf("[STRUCTURER][WARN] dropping chunk %q: missing timestamps", trim(c.Title, 60))
			continue
		}
		if *c.StartTime >= *c.EndTime {
			log.Printf("[STRUCTURER][WARN] dropping chunk %q: inverted range", trim(c.Title, 60))
			continue
		}
		title := c.Title
		if title == "" {
			title = "Untitled"
		}
		out = append(out, models.ChunkDraft{
			Title:      title,
			Transcript: c.Transcript,
			Start:      *c.StartTime,
			End:        *c.EndTime,
		})
	}
	return out
}
