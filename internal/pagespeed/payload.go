package pagespeed

import (
	"encoding/json"
	"math"
)

// Lighthouse audit keys read by the extractor.
const (
	AuditSpeedIndex             = "speed-index"
	AuditTotalBlockingTime      = "total-blocking-time"
	AuditLargestContentfulPaint = "largest-contentful-paint"
	AuditFirstContentfulPaint   = "first-contentful-paint"
	AuditInteractive            = "interactive"
	AuditCumulativeLayoutShift  = "cumulative-layout-shift"
)

// Payload is the subset of a runPagespeed response this tool reads.
// Every field is optional and decodes leniently: a value of the wrong JSON type
// becomes absent instead of failing the whole response.
type Payload struct {
	ID                   Text              `json:"id"`
	AnalysisUTCTimestamp Text              `json:"analysisUTCTimestamp"`
	LighthouseResult     *LighthouseResult `json:"lighthouseResult,omitempty"`
}

// LighthouseResult holds the audits keyed by their Lighthouse id.
type LighthouseResult struct {
	Audits map[string]Audit `json:"audits,omitempty"`
}

// Audit is a single Lighthouse audit.
type Audit struct {
	Score        Score `json:"score"`
	DisplayValue Text  `json:"displayValue"`
}

// IsEmpty reports whether the payload carries nothing at all.
func (p *Payload) IsEmpty() bool {
	if p == nil {
		return true
	}

	return !p.ID.Valid() && !p.AnalysisUTCTimestamp.Valid() && p.LighthouseResult == nil
}

// Audit returns the named audit, or a zero Audit when the payload,
// the lighthouse result or the audit itself is missing.
func (p *Payload) Audit(key string) Audit {
	if p == nil || p.LighthouseResult == nil {
		return Audit{}
	}

	return p.LighthouseResult.Audits[key]
}

// UnmarshalJSON treats a non-object lighthouseResult as having no audits.
func (l *LighthouseResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Audits map[string]json.RawMessage `json:"audits"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = LighthouseResult{}
		return nil
	}

	audits := make(map[string]Audit, len(raw.Audits))
	for key, msg := range raw.Audits {
		var audit Audit
		_ = json.Unmarshal(msg, &audit)
		audits[key] = audit
	}

	*l = LighthouseResult{Audits: audits}

	return nil
}

// UnmarshalJSON treats a non-object audit as empty.
func (a *Audit) UnmarshalJSON(data []byte) error {
	var raw struct {
		Score        Score `json:"score"`
		DisplayValue Text  `json:"displayValue"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*a = Audit{}
		return nil
	}

	*a = Audit(raw)

	return nil
}

// Score is an optional finite number.
type Score struct {
	value float64
	valid bool
}

// NewScore returns a present score.
func NewScore(v float64) Score {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Score{}
	}

	return Score{value: v, valid: true}
}

// Valid reports whether the score is present.
func (s Score) Valid() bool { return s.valid }

// Ptr returns the score as a pointer, nil when absent.
func (s Score) Ptr() *float64 {
	if !s.valid {
		return nil
	}

	v := s.value

	return &v
}

// UnmarshalJSON accepts a JSON number; anything else is absent.
func (s *Score) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*s = Score{}
		return nil
	}

	f, ok := v.(float64)
	if !ok {
		*s = Score{}
		return nil
	}

	*s = NewScore(f)

	return nil
}

// MarshalJSON writes null for an absent score.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.valid {
		return []byte("null"), nil
	}

	return json.Marshal(s.value)
}

// Text is an optional non-empty string.
type Text struct {
	value string
	valid bool
}

// NewText returns a present text, absent when s is empty.
func NewText(s string) Text {
	return Text{value: s, valid: s != ""}
}

// Valid reports whether the text is present.
func (t Text) Valid() bool { return t.valid }

// String returns the text, empty when absent.
func (t Text) String() string { return t.value }

// Ptr returns the text as a pointer, nil when absent.
func (t Text) Ptr() *string {
	if !t.valid {
		return nil
	}

	v := t.value

	return &v
}

// UnmarshalJSON accepts a JSON string; anything else is absent.
func (t *Text) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*t = Text{}
		return nil
	}

	s, ok := v.(string)
	if !ok {
		*t = Text{}
		return nil
	}

	*t = NewText(s)

	return nil
}

// MarshalJSON writes null for an absent text.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.valid {
		return []byte("null"), nil
	}

	return json.Marshal(t.value)
}
