package consult

import (
	"time"

	"github.com/google/uuid"
)

// Session statuses.
const (
	StatusActive = "active"
	StatusEnded  = "ended"
)

// Session maps to the call_session table. A session is the persisted record
// of one video consult between a patient and a clinician; the live pipeline
// state is held by the Manager and keyed by session ID.
type Session struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	ClinicianID        uuid.UUID  `db:"clinician_id" json:"clinician_id"`
	SourceLang         string     `db:"source_lang" json:"source_lang"`
	TargetLang         string     `db:"target_lang" json:"target_lang"`
	TranslationEnabled bool       `db:"translation_enabled" json:"translation_enabled"`
	Status             string     `db:"status" json:"status"`
	StartedAt          time.Time  `db:"started_at" json:"started_at"`
	EndedAt            *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}
