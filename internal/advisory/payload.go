// Package advisory resolves free-text symptom descriptions into structured
// health guidance. Online requests go to the AI provider; offline requests
// fall back to a static keyword table. Both paths produce the same payload
// shape so callers never branch on the source.
package advisory

// Payload source labels.
const (
	SourceAI      = "ai"
	SourceOffline = "offline"
)

// Payload is the structured health-guidance result shared by the AI-backed
// and keyword-matched resolution paths.
type Payload struct {
	Condition   string   `json:"condition"`
	Diagnosis   []string `json:"differential_diagnosis"`
	Medicines   []string `json:"medicine_suggestions"`
	Precautions []string `json:"precautions"`
	Diet        []string `json:"diet"`
	Exercise    []string `json:"exercise"`
	Disclaimer  string   `json:"disclaimer"`
	Source      string   `json:"source"`
}

// clone copies the payload including its slice fields, so handing one out
// never aliases shared backing arrays.
func (p Payload) clone() Payload {
	p.Diagnosis = append([]string(nil), p.Diagnosis...)
	p.Medicines = append([]string(nil), p.Medicines...)
	p.Precautions = append([]string(nil), p.Precautions...)
	p.Diet = append([]string(nil), p.Diet...)
	p.Exercise = append([]string(nil), p.Exercise...)
	return p
}

const offlineDisclaimer = "This guidance was generated without a network connection from a limited local reference. It is not a diagnosis. Consult a clinician, and call emergency services for severe symptoms."

const aiDisclaimer = "This AI-generated guidance is informational and not a diagnosis. Consult a clinician before acting on it."
