package records

import (
	"encoding/json"
	"strings"
	"testing"
)

func validFeedbackJSON(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(sampleFeedback())
	if err != nil {
		t.Fatalf("marshal sample: %v", err)
	}
	return data
}

func TestParseFeedbackValid(t *testing.T) {
	fb, err := ParseFeedback(validFeedbackJSON(t))
	if err != nil {
		t.Fatalf("ParseFeedback: %v", err)
	}
	if fb.OverallScore != 82 {
		t.Fatalf("unexpected overall score %d", fb.OverallScore)
	}
	if fb.Skills.Score != 90 {
		t.Fatalf("unexpected skills score %d", fb.Skills.Score)
	}
}

func TestParseFeedbackRejectsOutOfRangeScore(t *testing.T) {
	var m map[string]any
	if err := json.Unmarshal(validFeedbackJSON(t), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m["overallScore"] = 140
	raw, _ := json.Marshal(m)

	if _, err := ParseFeedback(raw); err == nil {
		t.Fatal("expected rejection of score above 100")
	}
}

func TestParseFeedbackRejectsMissingCategory(t *testing.T) {
	var m map[string]any
	if err := json.Unmarshal(validFeedbackJSON(t), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	delete(m, "structure")
	raw, _ := json.Marshal(m)

	_, err := ParseFeedback(raw)
	if err == nil {
		t.Fatal("expected rejection of missing category")
	}
	if !strings.Contains(err.Error(), "structure") {
		t.Fatalf("expected error naming the missing key, got %v", err)
	}
}

func TestParseFeedbackRejectsUnknownTipType(t *testing.T) {
	raw := strings.Replace(string(validFeedbackJSON(t)), `"type":"positive"`, `"type":"neutral"`, 1)
	if _, err := ParseFeedback([]byte(raw)); err == nil {
		t.Fatal("expected rejection of unknown tip type")
	}
}

func TestParseFeedbackAllowsBareATSTip(t *testing.T) {
	// ATS tips may carry only a type; other categories require text.
	fb, err := ParseFeedback(validFeedbackJSON(t))
	if err != nil {
		t.Fatalf("ParseFeedback: %v", err)
	}
	if len(fb.ATS.Tips) != 1 || fb.ATS.Tips[0].Tip != "" {
		t.Fatalf("unexpected ATS tips: %+v", fb.ATS.Tips)
	}
}

func TestParseFeedbackRejectsTipMissingExplanation(t *testing.T) {
	raw := strings.Replace(string(validFeedbackJSON(t)),
		`"explanation":"Consistent active voice throughout."`, `"explanation":""`, 1)
	if _, err := ParseFeedback([]byte(raw)); err == nil {
		t.Fatal("expected rejection of empty explanation outside ATS")
	}
}

func TestParseFeedbackRejectsNonJSON(t *testing.T) {
	if _, err := ParseFeedback([]byte("I'm sorry, I can't help with that.")); err == nil {
		t.Fatal("expected rejection of prose output")
	}
}
