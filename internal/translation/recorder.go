package translation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrNoTrack is returned when a recorder is constructed without a live
	// audio track, so callers can distinguish "feature unavailable" from
	// "feature running".
	ErrNoTrack = errors.New("translation: no audio track available")

	// ErrBadInterval is returned for a non-positive chunk interval.
	ErrBadInterval = errors.New("translation: chunk interval must be positive")
)

// Recorder captures a live audio track in fixed-duration chunks and hands
// each completed chunk to a sink. At most one chunk is being recorded at any
// time, and Stop tears the loop down fully before returning so rapid
// toggle cycles never leave a stale instance emitting chunks.
type Recorder struct {
	track    Track
	interval time.Duration
	sink     func(Chunk)
	log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRecorder validates its inputs up front. A nil track or non-positive
// interval is a construction error, not a silent no-op.
func NewRecorder(track Track, interval time.Duration, sink func(Chunk), log zerolog.Logger) (*Recorder, error) {
	if track == nil {
		return nil, ErrNoTrack
	}
	if interval <= 0 {
		return nil, ErrBadInterval
	}
	return &Recorder{track: track, interval: interval, sink: sink, log: log}, nil
}

// Start begins the chunking loop. Calling Start while already running is a
// no-op.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(ctx, r.done)
}

// Stop halts recording and blocks until the loop has fully exited. A partial
// in-flight chunk is discarded, never emitted. Calling Stop when not running
// is a no-op.
func (r *Recorder) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the chunking loop is active.
func (r *Recorder) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Recorder) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	seq := 0
	for {
		data, err := r.track.Record(ctx, r.interval)
		if ctx.Err() != nil {
			// Stopped mid-chunk; the partial recording is discarded.
			return
		}
		if err != nil {
			r.log.Warn().Err(err).Int("seq", seq).Msg("chunk recording failed")
			// A track that fails immediately would otherwise spin this loop
			// hot; wait out the chunk interval before the next attempt.
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.interval):
			}
			continue
		}
		if len(data) == 0 {
			continue
		}

		r.sink(Chunk{Seq: seq, Data: data, Duration: r.interval})
		seq++
	}
}
