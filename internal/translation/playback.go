package translation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// PlaybackQueue serializes synthesized-audio playback in strict arrival
// order. At most one entry plays at a time; the head is dequeued only when
// nothing is playing. Dequeuing an entry always updates the caption pair;
// entries without an audio URI update the caption and skip playback.
type PlaybackQueue struct {
	player Player
	log    zerolog.Logger

	// onCaption, when set, is invoked after every caption change, including
	// the clear on Flush. Called without the queue lock held.
	onCaption func(Caption)

	mu      sync.Mutex
	queue   []queueEntry
	playing bool
	caption Caption
	cancel  context.CancelFunc
}

type queueEntry struct {
	caption  Caption
	audioURI string
}

// NewPlaybackQueue creates an empty queue backed by the given player.
func NewPlaybackQueue(player Player, log zerolog.Logger) *PlaybackQueue {
	return &PlaybackQueue{player: player, log: log}
}

// Enqueue appends an entry to the tail and kicks the checker.
func (q *PlaybackQueue) Enqueue(caption Caption, audioURI string) {
	q.mu.Lock()
	q.queue = append(q.queue, queueEntry{caption: caption, audioURI: audioURI})
	q.mu.Unlock()

	q.maybeNext()
}

// Caption returns the currently displayed caption pair.
func (q *PlaybackQueue) Caption() Caption {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.caption
}

// Pending returns the number of entries waiting behind the current playback.
func (q *PlaybackQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Playing reports whether an utterance is currently playing.
func (q *PlaybackQueue) Playing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

// Flush drops all pending entries, cancels any active playback, and clears
// the caption pair. Used when translation is disabled mid-session so no stale
// utterance plays after the feature is off.
func (q *PlaybackQueue) Flush() {
	q.mu.Lock()
	q.queue = nil
	q.caption = Caption{}
	cancel := q.cancel
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if q.onCaption != nil {
		q.onCaption(Caption{})
	}
}

// maybeNext dequeues and plays the head if nothing is playing. Entries with
// no audio URI are consumed inline so captions stay current without waiting
// on a player.
func (q *PlaybackQueue) maybeNext() {
	var changed []Caption
	q.mu.Lock()
	for {
		if q.playing || len(q.queue) == 0 {
			q.mu.Unlock()
			q.notifyCaptions(changed)
			return
		}

		head := q.queue[0]
		q.queue = q.queue[1:]
		q.caption = head.caption
		changed = append(changed, head.caption)

		if head.audioURI == "" {
			q.log.Debug().Msg("playback skipped, entry has no audio")
			continue
		}

		q.playing = true
		ctx, cancel := context.WithCancel(context.Background())
		q.cancel = cancel
		q.mu.Unlock()

		q.notifyCaptions(changed)
		go q.play(ctx, cancel, head)
		return
	}
}

func (q *PlaybackQueue) notifyCaptions(captions []Caption) {
	if q.onCaption == nil {
		return
	}
	for _, c := range captions {
		q.onCaption(c)
	}
}

func (q *PlaybackQueue) play(ctx context.Context, cancel context.CancelFunc, entry queueEntry) {
	err := q.player.Play(ctx, entry.caption.Translated, entry.audioURI)
	cancel()

	q.mu.Lock()
	q.playing = false
	q.cancel = nil
	q.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		q.log.Warn().Err(err).Msg("utterance playback failed")
	}

	q.maybeNext()
}
