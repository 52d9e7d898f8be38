package consult

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/platform/ws"
	"github.com/telecare/telecare/internal/translation"
)

// ManagerConfig holds the pipeline parameters applied to every live call.
type ManagerConfig struct {
	ChunkInterval  time.Duration
	RequestTimeout time.Duration
}

// Manager owns the live side of call sessions: one translation pipeline per
// active call, fed by audio frames pushed over the API and fanned out to
// overlay clients through the event hub.
type Manager struct {
	speech translation.SpeechService
	hub    ws.EventPublisher
	cfg    ManagerConfig
	log    zerolog.Logger

	mu    sync.Mutex
	calls map[uuid.UUID]*liveCall
}

type liveCall struct {
	track    *FrameTrack
	pipeline *translation.Pipeline
}

func NewManager(speech translation.SpeechService, hub ws.EventPublisher, cfg ManagerConfig, log zerolog.Logger) *Manager {
	if cfg.ChunkInterval <= 0 {
		cfg.ChunkInterval = 5 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	return &Manager{
		speech: speech,
		hub:    hub,
		cfg:    cfg,
		log:    log,
		calls:  make(map[uuid.UUID]*liveCall),
	}
}

// StartCall builds the translation pipeline for a newly started session. The
// pipeline starts disabled; EnableTranslation turns the recorder on.
func (m *Manager) StartCall(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.calls[s.ID]; ok {
		return fmt.Errorf("call %s is already live", s.ID)
	}

	topic := ws.CallTopic(s.ID)
	log := m.log.With().Str("session_id", s.ID.String()).Logger()

	track := NewFrameTrack()
	engine := translation.NewAIEngine(m.speech, log)
	player := &broadcastPlayer{hub: m.hub, topic: topic}
	notifier := &hubNotifier{hub: m.hub, topic: topic}

	pipeline, err := translation.NewPipeline(track, engine, player, notifier, translation.Config{
		SourceLang:     s.SourceLang,
		TargetLang:     s.TargetLang,
		ChunkInterval:  m.cfg.ChunkInterval,
		RequestTimeout: m.cfg.RequestTimeout,
		OnCaption: func(c translation.Caption) {
			m.publish(topic, ws.EventCaption, c)
		},
	}, log)
	if err != nil {
		return err
	}

	m.calls[s.ID] = &liveCall{track: track, pipeline: pipeline}
	return nil
}

// EndCall tears the pipeline down. Ending a call that is not live is a no-op
// so stale end requests stay harmless.
func (m *Manager) EndCall(id uuid.UUID) {
	m.mu.Lock()
	call, ok := m.calls[id]
	delete(m.calls, id)
	m.mu.Unlock()

	if ok {
		call.pipeline.Disable()
	}
}

// EnableTranslation starts chunked recording for the call.
func (m *Manager) EnableTranslation(id uuid.UUID) error {
	call, err := m.call(id)
	if err != nil {
		return err
	}
	call.pipeline.Enable()
	return nil
}

// DisableTranslation stops recording and flushes pending playback.
func (m *Manager) DisableTranslation(id uuid.UUID) error {
	call, err := m.call(id)
	if err != nil {
		return err
	}
	call.pipeline.Disable()
	return nil
}

// PushAudio appends a frame of participant audio to the call's track. Frames
// pushed while translation is disabled accumulate until the next chunk is
// cut, matching how a live track keeps flowing regardless of the feature
// toggle.
func (m *Manager) PushAudio(id uuid.UUID, frame []byte) error {
	call, err := m.call(id)
	if err != nil {
		return err
	}
	call.track.Push(frame)
	return nil
}

// Caption returns the current caption pair for the call.
func (m *Manager) Caption(id uuid.UUID) (translation.Caption, error) {
	call, err := m.call(id)
	if err != nil {
		return translation.Caption{}, err
	}
	return call.pipeline.Caption(), nil
}

// Live reports whether the call has a running pipeline.
func (m *Manager) Live(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.calls[id]
	return ok
}

func (m *Manager) call(id uuid.UUID) (*liveCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call, ok := m.calls[id]
	if !ok {
		return nil, fmt.Errorf("call %s is not live", id)
	}
	return call, nil
}

func (m *Manager) publish(topic, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		m.log.Warn().Err(err).Str("event", eventType).Msg("event payload marshal failed")
		return
	}
	_ = m.hub.Publish(context.Background(), ws.Event{
		Type:      eventType,
		Topic:     topic,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// ---------------------------------------------------------------------------
// FrameTrack
// ---------------------------------------------------------------------------

// FrameTrack adapts pushed audio frames to the pipeline's pull-based Track.
// Record blocks for the chunk interval while frames accumulate, then returns
// whatever arrived in that window.
type FrameTrack struct {
	mu  sync.Mutex
	buf []byte
}

func NewFrameTrack() *FrameTrack {
	return &FrameTrack{}
}

// Push appends one frame of raw audio.
func (t *FrameTrack) Push(frame []byte) {
	t.mu.Lock()
	t.buf = append(t.buf, frame...)
	t.mu.Unlock()
}

// Record implements translation.Track.
func (t *FrameTrack) Record(ctx context.Context, d time.Duration) ([]byte, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	t.mu.Lock()
	data := t.buf
	t.buf = nil
	t.mu.Unlock()
	return data, nil
}

// ---------------------------------------------------------------------------
// Hub-backed player and notifier
// ---------------------------------------------------------------------------

type speakEvent struct {
	Text     string `json:"text"`
	AudioURI string `json:"audio_uri"`
}

// broadcastPlayer pushes each utterance to overlay clients and holds the
// playback slot for the utterance's estimated duration, so the FIFO ordering
// the queue guarantees survives the trip over the wire.
type broadcastPlayer struct {
	hub   ws.EventPublisher
	topic string
}

func (p *broadcastPlayer) Play(ctx context.Context, text, audioURI string) error {
	data, err := json.Marshal(speakEvent{Text: text, AudioURI: audioURI})
	if err != nil {
		return err
	}
	if err := p.hub.Publish(ctx, ws.Event{
		Type:      ws.EventSpeak,
		Topic:     p.topic,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}); err != nil {
		return err
	}

	timer := time.NewTimer(estimateSpeechDuration(text))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// estimateSpeechDuration approximates how long clients take to play an
// utterance, pacing the queue at roughly 150 words per minute.
func estimateSpeechDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	d := time.Duration(words) * 400 * time.Millisecond
	if d < time.Second {
		d = time.Second
	}
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

type noticeEvent struct {
	Message string `json:"message"`
}

// hubNotifier surfaces transient pipeline failures as toast-style notices.
type hubNotifier struct {
	hub   ws.EventPublisher
	topic string
}

func (n *hubNotifier) Notify(message string) {
	data, err := json.Marshal(noticeEvent{Message: message})
	if err != nil {
		return
	}
	_ = n.hub.Publish(context.Background(), ws.Event{
		Type:      ws.EventNotice,
		Topic:     n.topic,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}
