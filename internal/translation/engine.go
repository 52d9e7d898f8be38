package translation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrNoSpeech indicates a chunk contained no recognizable speech. It is not a
// failure worth notifying the user about.
var ErrNoSpeech = errors.New("translation: no speech in chunk")

// SpeechService is the slice of the AI provider the engine needs.
type SpeechService interface {
	Transcribe(ctx context.Context, audio []byte, lang string) (string, error)
	Translate(ctx context.Context, text, srcLang, dstLang string) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// AIEngine implements Engine on top of the AI provider: transcribe the chunk,
// translate the transcript, synthesize the translation. Synthesis failure
// degrades to a caption-only result rather than failing the whole chunk.
type AIEngine struct {
	svc SpeechService
	log zerolog.Logger
}

// NewAIEngine builds an engine over the given speech service.
func NewAIEngine(svc SpeechService, log zerolog.Logger) *AIEngine {
	return &AIEngine{svc: svc, log: log}
}

// Translate implements Engine.
func (e *AIEngine) Translate(ctx context.Context, chunk Chunk, srcLang, dstLang string) (Result, error) {
	transcript, err := e.svc.Transcribe(ctx, chunk.Data, srcLang)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe chunk %d: %w", chunk.Seq, err)
	}
	if transcript == "" {
		return Result{}, ErrNoSpeech
	}

	translated, err := e.svc.Translate(ctx, transcript, srcLang, dstLang)
	if err != nil {
		return Result{}, fmt.Errorf("translate chunk %d: %w", chunk.Seq, err)
	}

	result := Result{Transcribed: transcript, Translated: translated}

	audio, err := e.svc.Synthesize(ctx, translated)
	if err != nil {
		e.log.Warn().Err(err).Int("seq", chunk.Seq).Msg("speech synthesis failed, caption only")
		return result, nil
	}
	result.AudioURI = "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(audio)

	return result, nil
}
