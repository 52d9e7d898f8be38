package translation

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the per-session pipeline parameters.
type Config struct {
	SourceLang    string
	TargetLang    string
	ChunkInterval time.Duration
	// RequestTimeout bounds each translation call; zero disables the bound.
	RequestTimeout time.Duration
	// OnCaption, when set, is invoked on every caption change so callers can
	// fan captions out beyond the local CaptionState.
	OnCaption func(Caption)
}

// Pipeline wires a recorder, translation client, and playback queue into the
// live-call translation feature. Enable and Disable implement the session
// toggle; Disable tears the recorder down synchronously and flushes the
// playback queue so nothing stale plays afterwards.
type Pipeline struct {
	recorder *Recorder
	client   *Client
	queue    *PlaybackQueue
	log      zerolog.Logger

	mu      sync.Mutex
	enabled bool
}

// NewPipeline constructs a pipeline for one call participant. It returns an
// error when the track is unavailable or the configuration is invalid, so the
// caller can tell the user the feature cannot start.
func NewPipeline(track Track, engine Engine, player Player, notifier Notifier, cfg Config, log zerolog.Logger) (*Pipeline, error) {
	queue := NewPlaybackQueue(player, log)
	queue.onCaption = cfg.OnCaption

	client := NewClient(engine, cfg.SourceLang, cfg.TargetLang, cfg.RequestTimeout,
		func(r Result) {
			queue.Enqueue(Caption{Original: r.Transcribed, Translated: r.Translated}, r.AudioURI)
		},
		notifier, log)

	recorder, err := NewRecorder(track, cfg.ChunkInterval, func(c Chunk) {
		client.Submit(c)
	}, log)
	if err != nil {
		return nil, err
	}

	return &Pipeline{recorder: recorder, client: client, queue: queue, log: log}, nil
}

// Enable starts chunked recording. Enabling an already-enabled pipeline is a
// no-op.
func (p *Pipeline) Enable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return
	}
	p.enabled = true
	p.recorder.Start()
	p.log.Info().Msg("live translation enabled")
}

// Disable stops recording synchronously, cancels any translation still in
// flight, and flushes queued playback. A chunk being recorded at the moment
// of the call is discarded, and an in-flight request's result never reaches
// the queue after this returns.
func (p *Pipeline) Disable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	p.enabled = false
	p.recorder.Stop()
	p.client.Cancel()
	p.queue.Flush()
	p.log.Info().Msg("live translation disabled")
}

// Enabled reports whether the pipeline is currently running.
func (p *Pipeline) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Caption returns the current caption pair for overlay rendering.
func (p *Pipeline) Caption() Caption {
	return p.queue.Caption()
}
