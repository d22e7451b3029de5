// Package records holds the analysis record model, its key-value persistence
// and the upload-convert-analyze pipeline that produces records.
package records

import (
	"encoding/json"
	"fmt"
)

// Tip types as they appear on the wire.
const (
	TipPositive    = "positive"
	TipImprovement = "improvement"
)

// Tip is a single piece of category feedback. ATS tips may omit tip text
// and explanation; the other categories carry both.
type Tip struct {
	Type        string `json:"type"`
	Tip         string `json:"tip,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// Category is one scored feedback dimension.
type Category struct {
	Score int   `json:"score"`
	Tips  []Tip `json:"tips"`
}

// Feedback is the structured critique produced by the analysis step.
type Feedback struct {
	OverallScore int      `json:"overallScore"`
	ATS          Category `json:"ATS"`
	ToneAndStyle Category `json:"toneAndStyle"`
	Content      Category `json:"content"`
	Structure    Category `json:"structure"`
	Skills       Category `json:"skills"`
}

// Record is the persisted unit representing one resume analysis. Feedback
// is nil between the checkpoint write and analysis completion; on the wire
// that state is the empty string, not null, so Record carries custom JSON
// (de)serialization.
type Record struct {
	ID             string
	ResumePath     string
	ImagePath      string
	CompanyName    string
	JobTitle       string
	JobDescription string
	Feedback       *Feedback
}

type recordWire struct {
	ID             string          `json:"id"`
	ResumePath     string          `json:"resumePath"`
	ImagePath      string          `json:"imagePath"`
	CompanyName    string          `json:"companyName"`
	JobTitle       string          `json:"jobTitle"`
	JobDescription string          `json:"jobDescription"`
	Feedback       json.RawMessage `json:"feedback"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	w := recordWire{
		ID:             r.ID,
		ResumePath:     r.ResumePath,
		ImagePath:      r.ImagePath,
		CompanyName:    r.CompanyName,
		JobTitle:       r.JobTitle,
		JobDescription: r.JobDescription,
		Feedback:       json.RawMessage(`""`),
	}
	if r.Feedback != nil {
		raw, err := json.Marshal(r.Feedback)
		if err != nil {
			return nil, err
		}
		w.Feedback = raw
	}
	return json.Marshal(w)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.ID = w.ID
	r.ResumePath = w.ResumePath
	r.ImagePath = w.ImagePath
	r.CompanyName = w.CompanyName
	r.JobTitle = w.JobTitle
	r.JobDescription = w.JobDescription
	r.Feedback = nil

	raw := w.Feedback
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		if s != "" {
			return fmt.Errorf("records: feedback string must be empty, got %q", s)
		}
	case '{':
		var fb Feedback
		if err := json.Unmarshal(raw, &fb); err != nil {
			return fmt.Errorf("records: decode feedback: %w", err)
		}
		r.Feedback = &fb
	case 'n': // null tolerated as not-yet-analyzed
	default:
		return fmt.Errorf("records: feedback must be empty string or object")
	}
	return nil
}
