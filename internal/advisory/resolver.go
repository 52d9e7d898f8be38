package advisory

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrOffline indicates the symptom checker cannot run because the backend has
// no connectivity. The symptom checker fails closed rather than serving
// degraded guidance.
var ErrOffline = errors.New("advisory: service is offline")

// Generator produces an AI-backed advisory for a symptom description.
type Generator interface {
	GenerateAdvisory(ctx context.Context, symptoms, lang string) (*Payload, error)
}

// Connectivity reports whether the AI provider is reachable.
type Connectivity interface {
	Online() bool
}

// Resolver decides, per request, whether to call the AI service or resolve
// locally. The two entry points deliberately differ: CheckSymptoms fails
// closed because the results page should never present stale or degraded
// medical guidance when connectivity was expected, while AssistantAdvise
// fails open so the voice assistant stays useful without a network.
type Resolver struct {
	gen  Generator
	conn Connectivity
	log  zerolog.Logger
}

// NewResolver builds a Resolver over a generator and connectivity source.
func NewResolver(gen Generator, conn Connectivity, log zerolog.Logger) *Resolver {
	return &Resolver{gen: gen, conn: conn, log: log}
}

// CheckSymptoms serves the symptom-checker results page. Offline state or an
// AI failure surfaces as an error; no offline fallback.
func (r *Resolver) CheckSymptoms(ctx context.Context, symptoms, lang string) (*Payload, error) {
	if symptoms == "" {
		return nil, fmt.Errorf("symptoms text is required")
	}
	if !r.conn.Online() {
		return nil, ErrOffline
	}

	payload, err := r.gen.GenerateAdvisory(ctx, symptoms, lang)
	if err != nil {
		return nil, fmt.Errorf("generate advisory: %w", err)
	}
	return payload, nil
}

// AssistantAdvise serves the voice assistant. Offline state resolves against
// the keyword table before any network call is attempted, and an online AI
// failure degrades to the same table rather than erroring.
func (r *Resolver) AssistantAdvise(ctx context.Context, symptoms, lang string) (*Payload, error) {
	if symptoms == "" {
		return nil, fmt.Errorf("symptoms text is required")
	}
	if !r.conn.Online() {
		p := MatchOffline(symptoms)
		return &p, nil
	}

	payload, err := r.gen.GenerateAdvisory(ctx, symptoms, lang)
	if err != nil {
		r.log.Warn().Err(err).Msg("assistant advisory fell back to offline table")
		p := MatchOffline(symptoms)
		return &p, nil
	}
	return payload, nil
}
