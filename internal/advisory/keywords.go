package advisory

import "strings"

// keywordEntry pairs a set of trigger keywords with a canned payload. The
// table is scanned in definition order and the first entry with any keyword
// appearing as a substring of the lower-cased input wins. Hindi terms are
// transliterated the way patients commonly type them.
type keywordEntry struct {
	keywords []string
	payload  Payload
}

var keywordTable = []keywordEntry{
	{
		keywords: []string{"headache", "migraine", "sar dard", "sir dard"},
		payload: Payload{
			Condition:   "Headache",
			Diagnosis:   []string{"Tension headache", "Migraine", "Dehydration"},
			Medicines:   []string{"Paracetamol 500mg after food"},
			Precautions: []string{"Rest in a quiet, dark room", "Limit screen time", "Seek care urgently for sudden severe headache or headache with fever and stiff neck"},
			Diet:        []string{"Drink plenty of water", "Avoid skipping meals", "Limit caffeine"},
			Exercise:    []string{"Gentle neck stretches", "Short walks in fresh air"},
			Disclaimer:  offlineDisclaimer,
			Source:      SourceOffline,
		},
	},
	{
		keywords: []string{"cold", "cough", "zukham", "khasi", "sardi", "runny nose", "sore throat"},
		payload: Payload{
			Condition:   "Common cold",
			Diagnosis:   []string{"Common cold", "Seasonal allergy", "Mild flu"},
			Medicines:   []string{"Paracetamol 500mg for fever or body ache", "Steam inhalation twice daily"},
			Precautions: []string{"Rest and stay warm", "Cover mouth while coughing", "See a doctor if symptoms persist beyond a week or breathing becomes difficult"},
			Diet:        []string{"Warm fluids such as soup and ginger tea", "Honey with warm water", "Vitamin C rich fruits"},
			Exercise:    []string{"Rest until fever subsides", "Light walking once recovering"},
			Disclaimer:  offlineDisclaimer,
			Source:      SourceOffline,
		},
	},
	{
		keywords: []string{"fever", "bukhar", "temperature", "chills"},
		payload: Payload{
			Condition:   "Fever",
			Diagnosis:   []string{"Viral fever", "Flu", "Infection requiring evaluation"},
			Medicines:   []string{"Paracetamol 500mg every 6 hours as needed"},
			Precautions: []string{"Monitor temperature every 4 hours", "Sponge with lukewarm water if above 102F", "Seek care for fever beyond 3 days or above 103F"},
			Diet:        []string{"Plenty of fluids", "Light, easily digestible food"},
			Exercise:    []string{"Complete rest until fever resolves"},
			Disclaimer:  offlineDisclaimer,
			Source:      SourceOffline,
		},
	},
	{
		keywords: []string{"stomach", "pet dard", "diarrhea", "diarrhoea", "loose motion", "vomit", "ulti"},
		payload: Payload{
			Condition:   "Stomach upset",
			Diagnosis:   []string{"Gastroenteritis", "Food poisoning", "Indigestion"},
			Medicines:   []string{"Oral rehydration solution after each loose stool"},
			Precautions: []string{"Avoid outside food", "Wash hands before eating", "Seek care for blood in stool, severe pain, or signs of dehydration"},
			Diet:        []string{"ORS and clear fluids", "Bananas, rice, and curd", "Avoid spicy and oily food"},
			Exercise:    []string{"Rest until symptoms settle"},
			Disclaimer:  offlineDisclaimer,
			Source:      SourceOffline,
		},
	},
	{
		keywords: []string{"chest pain", "seene me dard", "breathless", "breathing difficulty", "saans"},
		payload: Payload{
			Condition:   "Chest pain",
			Diagnosis:   []string{"Requires urgent medical evaluation"},
			Medicines:   []string{"Do not self-medicate"},
			Precautions: []string{"Call emergency services immediately", "Sit upright and stay calm", "Do not drive yourself"},
			Diet:        []string{"Nothing by mouth until evaluated"},
			Exercise:    []string{"None, avoid all exertion"},
			Disclaimer:  offlineDisclaimer,
			Source:      SourceOffline,
		},
	},
}

// MatchOffline resolves input against the static keyword table. Matching is
// case-insensitive substring, first entry wins, no ranking. The payload is
// deep-copied so callers cannot mutate the table.
func MatchOffline(input string) Payload {
	lowered := strings.ToLower(input)
	for _, entry := range keywordTable {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return entry.payload.clone()
			}
		}
	}
	return GenericOfflinePayload()
}

// GenericOfflinePayload is returned when no keyword matches, so the caller
// always has renderable content.
func GenericOfflinePayload() Payload {
	return Payload{
		Condition:   "General guidance",
		Diagnosis:   []string{"Unable to assess offline"},
		Medicines:   []string{"No specific suggestion available offline"},
		Precautions: []string{"Consult a clinician when connectivity returns", "Call emergency services for severe or worsening symptoms"},
		Diet:        []string{"Stay hydrated", "Eat light, regular meals"},
		Exercise:    []string{"Rest as needed"},
		Disclaimer:  offlineDisclaimer,
		Source:      SourceOffline,
	}
}
