package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message sent to a provider.
type Message struct {
	Role    string
	Content string
}

// Options tunes a single chat invocation.
type Options struct {
	Model       string
	Temperature *float32
	JSONOutput  bool
}

// Usage reports provider token accounting when available.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the structured result of a chat invocation.
type Response struct {
	Model   string
	Message ResponseMessage
	Usage   *Usage
}

// ResponseMessage carries the assistant reply.
type ResponseMessage struct {
	Role    string
	Content Content
}

// Text returns the textual payload of the response.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return r.Message.Content.Text()
}

// ContentKind discriminates the two provider content encodings.
type ContentKind int

const (
	// ContentText is a plain string payload.
	ContentText ContentKind = iota
	// ContentParts is a sequence of typed parts; the first part carries the text.
	ContentParts
)

// Part is one element of a multi-part content sequence.
type Part struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Content is the tagged union of provider message content: either a plain
// string or a sequence of parts. The discriminator is explicit so callers
// never guess at the decoded shape.
type Content struct {
	Kind  ContentKind
	Str   string
	Parts []Part
}

// TextContent wraps a plain string payload.
func TextContent(s string) Content {
	return Content{Kind: ContentText, Str: s}
}

// PartsContent wraps a part sequence payload.
func PartsContent(parts []Part) Content {
	return Content{Kind: ContentParts, Parts: parts}
}

// Text extracts the textual payload for either kind.
func (c Content) Text() string {
	switch c.Kind {
	case ContentParts:
		if len(c.Parts) == 0 {
			return ""
		}
		return c.Parts[0].Text
	default:
		return c.Str
	}
}

// UnmarshalJSON decodes either encoding, branching on the leading token.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = Content{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode string content: %w", err)
		}
		*c = TextContent(s)
		return nil
	case '[':
		var parts []Part
		if err := json.Unmarshal(trimmed, &parts); err != nil {
			return fmt.Errorf("decode part content: %w", err)
		}
		*c = PartsContent(parts)
		return nil
	default:
		return fmt.Errorf("unsupported content encoding starting with %q", trimmed[0])
	}
}

// MarshalJSON encodes the active variant.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Kind == ContentParts {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Str)
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// Client abstracts LLM providers for chat and image text extraction.
type Client interface {
	Chat(ctx context.Context, messages []Message, opts Options) (*Response, error)
	Img2Txt(ctx context.Context, image []byte) (string, error)
}

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Chat returns ErrNotImplemented.
func (PlaceholderClient) Chat(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	return nil, ErrNotImplemented
}

// Img2Txt returns ErrNotImplemented.
func (PlaceholderClient) Img2Txt(ctx context.Context, image []byte) (string, error) {
	return "", ErrNotImplemented
}
