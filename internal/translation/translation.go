// Package translation implements the live-call translation pipeline: a
// recorder slices a participant's audio track into fixed-duration chunks, a
// client sends each chunk to the translation engine with at most one request
// in flight, and a playback queue serializes synthesized audio while keeping
// the caption pair current.
package translation

import (
	"context"
	"time"
)

// Chunk is one bounded-duration slice of recorded audio. It is created by the
// recorder, consumed exactly once by the client, then discarded.
type Chunk struct {
	Seq      int
	Data     []byte
	Duration time.Duration
}

// Result is the outcome of translating one chunk. AudioURI may be empty when
// the engine produced no synthesized audio for the utterance.
type Result struct {
	Transcribed string `json:"transcribed_text"`
	Translated  string `json:"translated_text"`
	AudioURI    string `json:"translated_audio_uri,omitempty"`
}

// Caption is the latest displayed original/translated pair. It is overwritten
// on each new result; no history is kept.
type Caption struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
}

// Track supplies recorded audio. Record blocks for up to the given duration
// and returns the captured bytes, or an error if the context is cancelled or
// the underlying media source fails.
type Track interface {
	Record(ctx context.Context, d time.Duration) ([]byte, error)
}

// Engine converts one chunk into a translation result.
type Engine interface {
	Translate(ctx context.Context, chunk Chunk, srcLang, dstLang string) (Result, error)
}

// Player plays one synthesized utterance. Play blocks until playback
// completes or the context is cancelled.
type Player interface {
	Play(ctx context.Context, text, audioURI string) error
}

// Notifier surfaces transient, user-visible notices such as a failed
// translation request. Implementations must not block.
type Notifier interface {
	Notify(message string)
}

// NopNotifier discards all notices.
type NopNotifier struct{}

func (NopNotifier) Notify(string) {}
