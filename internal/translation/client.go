package translation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Client submits chunks to the translation engine with an at-most-one-in-
// flight contract: a chunk arriving while a prior request is still pending is
// dropped, never queued. Recency of captions beats completeness. Each request
// carries a timeout so a hung call cannot wedge the guard forever; expiry is
// treated like any other transient failure and releases the slot.
type Client struct {
	engine   Engine
	srcLang  string
	dstLang  string
	timeout  time.Duration
	onResult func(Result)
	notifier Notifier
	log      zerolog.Logger

	mu       sync.Mutex
	inFlight bool
	cancel   context.CancelFunc
	gen      uint64
}

// NewClient builds a Client. onResult is called from the request goroutine
// for every successful translation; it must be safe for concurrent use with
// the caller's own goroutines.
func NewClient(engine Engine, srcLang, dstLang string, timeout time.Duration, onResult func(Result), notifier Notifier, log zerolog.Logger) *Client {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Client{
		engine:   engine,
		srcLang:  srcLang,
		dstLang:  dstLang,
		timeout:  timeout,
		onResult: onResult,
		notifier: notifier,
		log:      log,
	}
}

// Submit offers a chunk for translation. It returns false when a prior
// request is still in flight and the chunk was dropped.
func (c *Client) Submit(chunk Chunk) bool {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.log.Debug().Int("seq", chunk.Seq).Msg("chunk dropped, translation in flight")
		return false
	}
	c.inFlight = true
	c.gen++
	gen := c.gen

	ctx := context.Background()
	var cancel context.CancelFunc
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel
	c.mu.Unlock()

	go c.translate(ctx, cancel, chunk, gen)
	return true
}

// Cancel aborts the in-flight request, if any, and marks its eventual result
// stale so it is discarded even when the engine ignores the context. The
// guard is released by the request goroutine as it exits.
func (c *Client) Cancel() {
	c.mu.Lock()
	c.gen++
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// InFlight reports whether a translation request is currently pending.
func (c *Client) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *Client) translate(ctx context.Context, cancel context.CancelFunc, chunk Chunk, gen uint64) {
	defer func() {
		cancel()
		c.mu.Lock()
		c.inFlight = false
		if c.gen == gen {
			c.cancel = nil
		}
		c.mu.Unlock()
	}()

	result, err := c.engine.Translate(ctx, chunk, c.srcLang, c.dstLang)

	// The staleness check and delivery share the lock so a Cancel either
	// lands before the check or waits until the result is fully delivered.
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.log.Debug().Int("seq", chunk.Seq).Msg("translation result discarded, request cancelled")
		return
	}
	if errors.Is(err, ErrNoSpeech) {
		c.mu.Unlock()
		c.log.Debug().Int("seq", chunk.Seq).Msg("chunk had no speech")
		return
	}
	if err != nil {
		c.mu.Unlock()
		c.log.Warn().Err(err).Int("seq", chunk.Seq).Msg("translation request failed")
		c.notifier.Notify("Translation unavailable for the last utterance")
		return
	}

	c.onResult(result)
	c.mu.Unlock()
}
