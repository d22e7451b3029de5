package gemini

import (
	"context"
	"testing"

	"resumind/internal/llm"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(context.Background(), "   ", ""); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestResolveModelServesFeedbackPin(t *testing.T) {
	c := &Client{model: defaultModel}

	got := c.resolveModel(llm.FeedbackModel)
	if got == llm.FeedbackModel {
		t.Fatalf("feedback pin passed through verbatim: %q", got)
	}
	if got != feedbackModel {
		t.Fatalf("resolveModel(%q) = %q, want %q", llm.FeedbackModel, got, feedbackModel)
	}

	if got := c.resolveModel(""); got != defaultModel {
		t.Fatalf("resolveModel(\"\") = %q, want configured model %q", got, defaultModel)
	}
	if got := c.resolveModel(" gemini-2.5-flash "); got != "gemini-2.5-flash" {
		t.Fatalf("resolveModel passthrough = %q, want %q", got, "gemini-2.5-flash")
	}
}

func TestUninitializedClientFailsFast(t *testing.T) {
	var c *Client
	if _, err := c.Chat(context.Background(), nil, llm.Options{}); err == nil {
		t.Fatalf("expected error from nil client")
	}
	if _, err := c.Img2Txt(context.Background(), []byte("img")); err == nil {
		t.Fatalf("expected error from nil client")
	}
}
