package consult

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/platform/ws"
)

type Service struct {
	repo    Repository
	manager *Manager
	hub     ws.EventPublisher
	log     zerolog.Logger
}

func NewService(repo Repository, manager *Manager, hub ws.EventPublisher, log zerolog.Logger) *Service {
	return &Service{repo: repo, manager: manager, hub: hub, log: log}
}

// Start persists a new active session and brings its pipeline up. Translation
// starts disabled; the in-call toggle turns it on.
func (s *Service) Start(ctx context.Context, sess *Session) error {
	if sess.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if sess.ClinicianID == uuid.Nil {
		return fmt.Errorf("clinician_id is required")
	}
	if sess.SourceLang == "" {
		sess.SourceLang = "en"
	}
	if sess.TargetLang == "" {
		sess.TargetLang = "hi"
	}
	if sess.SourceLang == sess.TargetLang {
		return fmt.Errorf("source and target language must differ")
	}

	sess.Status = StatusActive
	sess.TranslationEnabled = false
	sess.StartedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, sess); err != nil {
		return err
	}
	if err := s.manager.StartCall(sess); err != nil {
		// Roll the record back so no active row lingers without a pipeline.
		now := time.Now().UTC()
		sess.Status = StatusEnded
		sess.EndedAt = &now
		if uerr := s.repo.Update(ctx, sess); uerr != nil {
			s.log.Warn().Err(uerr).Str("session_id", sess.ID.String()).Msg("session rollback failed")
		}
		return err
	}

	s.publishSession(sess)
	return nil
}

// End marks the session ended and tears the live pipeline down.
func (s *Service) End(ctx context.Context, id uuid.UUID) (*Session, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session not found")
	}
	if sess.Status == StatusEnded {
		return nil, fmt.Errorf("session already ended")
	}

	now := time.Now().UTC()
	sess.Status = StatusEnded
	sess.TranslationEnabled = false
	sess.EndedAt = &now
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, err
	}

	s.manager.EndCall(id)
	s.publishSession(sess)
	return sess, nil
}

// SetTranslation toggles live translation on an active session.
func (s *Service) SetTranslation(ctx context.Context, id uuid.UUID, enabled bool) (*Session, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session not found")
	}
	if sess.Status != StatusActive {
		return nil, fmt.Errorf("session is not active")
	}

	if enabled {
		err = s.manager.EnableTranslation(id)
	} else {
		err = s.manager.DisableTranslation(id)
	}
	if err != nil {
		return nil, err
	}

	sess.TranslationEnabled = enabled
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// PushAudio feeds a frame of participant audio into the live call.
func (s *Service) PushAudio(ctx context.Context, id uuid.UUID, frame []byte) error {
	if len(frame) == 0 {
		return fmt.Errorf("empty audio frame")
	}
	return s.manager.PushAudio(id, frame)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Session, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByClinician(ctx context.Context, clinicianID uuid.UUID, limit, offset int) ([]*Session, int, error) {
	return s.repo.ListByClinician(ctx, clinicianID, limit, offset)
}

func (s *Service) publishSession(sess *Session) {
	data, err := json.Marshal(sess)
	if err != nil {
		s.log.Warn().Err(err).Msg("session event marshal failed")
		return
	}
	_ = s.hub.Publish(context.Background(), ws.Event{
		Type:      ws.EventSession,
		Topic:     ws.CallTopic(sess.ID),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}
