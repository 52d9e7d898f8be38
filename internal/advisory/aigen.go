package advisory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/telecare/telecare/internal/platform/ai"
)

// Completer is the slice of the AI client the generator needs.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AIGenerator implements Generator over a chat-completion provider. The model
// is instructed to answer with a single JSON object matching the payload
// schema; anything else is a malformed-response failure.
type AIGenerator struct {
	client Completer
}

// NewAIGenerator wraps a completion client.
func NewAIGenerator(client Completer) *AIGenerator {
	return &AIGenerator{client: client}
}

const advisorySystemPrompt = `You are a cautious medical triage assistant for a telehealth service.
Given a patient's symptom description, respond in %s with exactly one JSON object and no other text:
{"condition": string, "differential_diagnosis": [string], "medicine_suggestions": [string], "precautions": [string], "diet": [string], "exercise": [string]}
Only suggest over-the-counter medicines. For anything potentially serious, the first precaution must be to seek immediate medical care.`

// GenerateAdvisory implements Generator.
func (g *AIGenerator) GenerateAdvisory(ctx context.Context, symptoms, lang string) (*Payload, error) {
	if lang == "" {
		lang = "English"
	}

	raw, err := g.client.Complete(ctx, fmt.Sprintf(advisorySystemPrompt, lang), symptoms)
	if err != nil {
		return nil, err
	}

	body, err := ai.ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed advisory response: %w", err)
	}

	var payload Payload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("decode advisory response: %w", err)
	}

	payload.Source = SourceAI
	payload.Disclaimer = aiDisclaimer
	return &payload, nil
}
