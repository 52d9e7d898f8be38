// Package ai wraps the OpenAI API behind a small client used by the live
// translation pipeline and the advisory resolver. All calls honor context
// deadlines so callers control how long a request may run.
package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse is returned when the model produces no usable output.
var ErrEmptyResponse = errors.New("ai: empty model response")

// Client is a thin wrapper around the OpenAI client configured with the
// model names used across the service.
type Client struct {
	client    *openai.Client
	chatModel string
}

// NewClient constructs a Client from an API key and chat model name.
func NewClient(apiKey, chatModel string) *Client {
	return &Client{
		client:    openai.NewClient(apiKey),
		chatModel: chatModel,
	}
}

// NewClientWithBaseURL points the client at an alternate API endpoint, for
// self-hosted gateways and compatible providers.
func NewClientWithBaseURL(apiKey, chatModel, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &Client{
		client:    openai.NewClientWithConfig(cfg),
		chatModel: chatModel,
	}
}

// Complete sends a single-turn chat completion with a system instruction and
// user prompt, returning the model's text response.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// Transcribe converts spoken audio to text in the given language. The lang
// parameter is an ISO 639-1 code and may be empty for auto-detection.
func (c *Client) Transcribe(ctx context.Context, audio []byte, lang string) (string, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio),
		FilePath: "chunk.wav",
		Language: lang,
	}

	resp, err := c.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Translate converts text from one language to another via chat completion.
func (c *Client) Translate(ctx context.Context, text, srcLang, dstLang string) (string, error) {
	system := fmt.Sprintf(
		"You are a medical interpreter. Translate the following text from %s to %s. "+
			"Preserve medical terminology accurately. Respond with the translation only.",
		srcLang, dstLang)
	return c.Complete(ctx, system, text)
}

// Synthesize converts text to spoken audio, returning MP3 bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req := openai.CreateSpeechRequest{
		Model: openai.TTSModel1,
		Input: text,
		Voice: openai.VoiceAlloy,
	}

	resp, err := c.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp); err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractJSON pulls the first JSON object out of a model response that may be
// wrapped in markdown fences or surrounding prose.
func ExtractJSON(s string) (string, error) {
	s = strings.TrimSpace(s)
	if fenced := strings.Index(s, "```"); fenced >= 0 {
		s = s[fenced+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return s[start : end+1], nil
}
