package consult

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/platform/ws"
)

type mockRepo struct {
	sessions map[uuid.UUID]*Session
	// nextID, when set, is assigned to the next created session instead of a
	// random ID so tests can predict it.
	nextID uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{sessions: make(map[uuid.UUID]*Session)}
}

func (m *mockRepo) Create(_ context.Context, s *Session) error {
	s.ID = uuid.New()
	if m.nextID != uuid.Nil {
		s.ID = m.nextID
		m.nextID = uuid.Nil
	}
	s.CreatedAt = time.Now()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, s *Session) error {
	if _, ok := m.sessions[s.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Session, int, error) {
	var items []*Session
	for _, s := range m.sessions {
		if s.PatientID == patientID {
			cp := *s
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByClinician(_ context.Context, clinicianID uuid.UUID, limit, offset int) ([]*Session, int, error) {
	var items []*Session
	for _, s := range m.sessions {
		if s.ClinicianID == clinicianID {
			cp := *s
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func newTestService() (*Service, *mockRepo, *Manager, *recordingHub) {
	repo := newMockRepo()
	hub := &recordingHub{}
	manager := NewManager(fakeSpeech{}, hub, ManagerConfig{
		ChunkInterval:  20 * time.Millisecond,
		RequestTimeout: time.Second,
	}, zerolog.Nop())
	return NewService(repo, manager, hub, zerolog.Nop()), repo, manager, hub
}

func startSession(t *testing.T, svc *Service) *Session {
	t.Helper()
	s := &Session{PatientID: uuid.New(), ClinicianID: uuid.New()}
	if err := svc.Start(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestStart(t *testing.T) {
	svc, _, manager, hub := newTestService()
	s := startSession(t, svc)

	if s.Status != StatusActive {
		t.Errorf("expected status %q, got %q", StatusActive, s.Status)
	}
	if s.SourceLang != "en" || s.TargetLang != "hi" {
		t.Errorf("expected default language pair, got %s/%s", s.SourceLang, s.TargetLang)
	}
	if s.TranslationEnabled {
		t.Error("expected translation to start disabled")
	}
	if !manager.Live(s.ID) {
		t.Error("expected pipeline to be live after start")
	}
	if len(hub.byType(ws.EventSession)) != 1 {
		t.Error("expected a session event on start")
	}
}

func TestStartValidation(t *testing.T) {
	svc, _, _, _ := newTestService()

	cases := []struct {
		name string
		s    *Session
	}{
		{"missing patient", &Session{ClinicianID: uuid.New()}},
		{"missing clinician", &Session{PatientID: uuid.New()}},
		{"same languages", &Session{PatientID: uuid.New(), ClinicianID: uuid.New(), SourceLang: "en", TargetLang: "en"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Start(context.Background(), tc.s); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestStartRollsBackSessionWhenPipelineFails(t *testing.T) {
	svc, repo, manager, _ := newTestService()

	// Occupy the manager under the ID the repo will hand out, so bringing the
	// pipeline up for the new session fails after the row exists.
	id := uuid.New()
	repo.nextID = id
	if err := manager.StartCall(&Session{ID: id, SourceLang: "en", TargetLang: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := &Session{PatientID: uuid.New(), ClinicianID: uuid.New()}
	if err := svc.Start(context.Background(), s); err == nil {
		t.Fatal("expected error when the pipeline cannot start")
	}

	stored, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != StatusEnded {
		t.Errorf("expected rolled-back session to be ended, got %q", stored.Status)
	}
	if stored.EndedAt == nil {
		t.Error("expected ended_at to be set on rollback")
	}
}

func TestSetTranslation(t *testing.T) {
	svc, _, _, _ := newTestService()
	s := startSession(t, svc)

	got, err := svc.SetTranslation(context.Background(), s.ID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.TranslationEnabled {
		t.Error("expected translation_enabled to be set")
	}

	got, err = svc.SetTranslation(context.Background(), s.ID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TranslationEnabled {
		t.Error("expected translation_enabled to be cleared")
	}
}

func TestEnd(t *testing.T) {
	svc, _, manager, hub := newTestService()
	s := startSession(t, svc)

	ended, err := svc.End(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ended.Status != StatusEnded {
		t.Errorf("expected status %q, got %q", StatusEnded, ended.Status)
	}
	if ended.EndedAt == nil {
		t.Error("expected ended_at to be set")
	}
	if manager.Live(s.ID) {
		t.Error("expected pipeline to be torn down")
	}
	if len(hub.byType(ws.EventSession)) != 2 {
		t.Error("expected session events for start and end")
	}

	if _, err := svc.End(context.Background(), s.ID); err == nil {
		t.Error("expected error ending twice")
	}
}

func TestSetTranslationOnEndedSession(t *testing.T) {
	svc, _, _, _ := newTestService()
	s := startSession(t, svc)
	if _, err := svc.End(context.Background(), s.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.SetTranslation(context.Background(), s.ID, true); err == nil {
		t.Error("expected error toggling translation on an ended session")
	}
}

func TestPushAudioEmptyFrame(t *testing.T) {
	svc, _, _, _ := newTestService()
	s := startSession(t, svc)

	if err := svc.PushAudio(context.Background(), s.ID, nil); err == nil {
		t.Error("expected error for empty frame")
	}
}
