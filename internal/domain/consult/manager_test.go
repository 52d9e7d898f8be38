package consult

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/platform/ws"
)

type fakeSpeech struct{}

func (fakeSpeech) Transcribe(_ context.Context, audio []byte, _ string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}
	return "hello doctor", nil
}

func (fakeSpeech) Translate(_ context.Context, text, _, _ string) (string, error) {
	return "namaste doctor", nil
}

func (fakeSpeech) Synthesize(_ context.Context, _ string) ([]byte, error) {
	return []byte{0x01, 0x02}, nil
}

type recordingHub struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recordingHub) Publish(_ context.Context, e ws.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *recordingHub) byType(eventType string) []ws.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ws.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func newTestManager() (*Manager, *recordingHub) {
	hub := &recordingHub{}
	m := NewManager(fakeSpeech{}, hub, ManagerConfig{
		ChunkInterval:  20 * time.Millisecond,
		RequestTimeout: time.Second,
	}, zerolog.Nop())
	return m, hub
}

func newTestSession() *Session {
	return &Session{
		ID:          uuid.New(),
		PatientID:   uuid.New(),
		ClinicianID: uuid.New(),
		SourceLang:  "en",
		TargetLang:  "hi",
		Status:      StatusActive,
		StartedAt:   time.Now().UTC(),
	}
}

func TestStartCallTwice(t *testing.T) {
	m, _ := newTestManager()
	s := newTestSession()

	if err := m.StartCall(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.StartCall(s); err == nil {
		t.Error("expected error starting a call twice")
	}
}

func TestPushAudioUnknownCall(t *testing.T) {
	m, _ := newTestManager()
	if err := m.PushAudio(uuid.New(), []byte{0x01}); err == nil {
		t.Error("expected error pushing audio to an unknown call")
	}
}

func TestTranslationFlowBroadcastsCaptionAndSpeak(t *testing.T) {
	m, hub := newTestManager()
	s := newTestSession()
	if err := m.StartCall(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.EndCall(s.ID)

	if err := m.EnableTranslation(s.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.PushAudio(s.ID, []byte("frame")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return len(hub.byType(ws.EventCaption)) > 0 && len(hub.byType(ws.EventSpeak)) > 0
	})

	topic := ws.CallTopic(s.ID)
	for _, e := range hub.byType(ws.EventCaption) {
		if e.Topic != topic {
			t.Errorf("caption published to topic %q, want %q", e.Topic, topic)
		}
	}

	caption, err := m.Caption(s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caption.Original != "hello doctor" || caption.Translated != "namaste doctor" {
		t.Errorf("unexpected caption %+v", caption)
	}
}

func TestDisableStopsChunking(t *testing.T) {
	m, _ := newTestManager()
	s := newTestSession()
	if err := m.StartCall(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.EndCall(s.ID)

	if err := m.EnableTranslation(s.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.DisableTranslation(s.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	caption, err := m.Caption(s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caption.Original != "" || caption.Translated != "" {
		t.Errorf("expected cleared caption after disable, got %+v", caption)
	}
}

func TestEndCallIdempotent(t *testing.T) {
	m, _ := newTestManager()
	s := newTestSession()
	if err := m.StartCall(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.EndCall(s.ID)
	m.EndCall(s.ID)

	if m.Live(s.ID) {
		t.Error("expected call to be gone after EndCall")
	}
	if err := m.PushAudio(s.ID, []byte{0x01}); err == nil {
		t.Error("expected error pushing audio after end")
	}
}

func TestFrameTrackDrainsOnRecord(t *testing.T) {
	track := NewFrameTrack()
	track.Push([]byte("ab"))
	track.Push([]byte("cd"))

	data, err := track.Record(context.Background(), 10*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "abcd" {
		t.Errorf("expected accumulated frames, got %q", data)
	}

	data, err = track.Record(context.Background(), 10*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected drained track, got %q", data)
	}
}

func TestFrameTrackRecordHonorsContext(t *testing.T) {
	track := NewFrameTrack()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := track.Record(ctx, time.Minute); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestEstimateSpeechDurationBounds(t *testing.T) {
	if d := estimateSpeechDuration(""); d != time.Second {
		t.Errorf("expected 1s floor, got %v", d)
	}
	if d := estimateSpeechDuration("one two three four five"); d != 2*time.Second {
		t.Errorf("expected 2s for five words, got %v", d)
	}
	long := ""
	for i := 0; i < 200; i++ {
		long += "word "
	}
	if d := estimateSpeechDuration(long); d != 30*time.Second {
		t.Errorf("expected 30s ceiling, got %v", d)
	}
}
