package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"resumind/internal/llm"
)

const defaultModel = "gemini-2.5-pro"

// feedbackModel serves the cross-provider feedback pin on Gemini.
const feedbackModel = "gemini-2.5-pro"

// Client implements llm.Client using the Google GenAI API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a new Gemini-backed client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{client: client, model: model}, nil
}

// resolveModel maps a requested model id to one Gemini can serve. The
// feedback pin names an OpenAI model, so it resolves to this provider's
// fixed equivalent instead of being passed through verbatim.
func (c *Client) resolveModel(requested string) string {
	switch strings.TrimSpace(requested) {
	case "":
		return c.model
	case llm.FeedbackModel:
		return feedbackModel
	default:
		return strings.TrimSpace(requested)
	}
}

// Chat sends the messages to Gemini and returns the structured response.
// System messages become the system instruction; the rest map to contents.
func (c *Client) Chat(ctx context.Context, messages []llm.Message, opts llm.Options) (*llm.Response, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("gemini client is not initialized")
	}

	config := &genai.GenerateContentConfig{}
	if opts.Temperature != nil {
		config.Temperature = opts.Temperature
	}
	if opts.JSONOutput {
		config.ResponseMIMEType = "application/json"
	}

	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			config.SystemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case llm.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		return nil, errors.New("at least one user message is required")
	}

	model := c.resolveModel(opts.Model)

	result, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, errors.New("gemini response empty content")
	}

	return &llm.Response{
		Model: model,
		Message: llm.ResponseMessage{
			Role:    llm.RoleAssistant,
			Content: llm.TextContent(text),
		},
	}, nil
}

// Img2Txt extracts text from an image via Gemini's inline image input.
func (c *Client) Img2Txt(ctx context.Context, image []byte) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}
	if len(image) == 0 {
		return "", errors.New("image is empty")
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromText(llm.Img2TxtPrompt),
			genai.NewPartFromBytes(image, http.DetectContentType(image)),
		},
	}}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini image to text: %w", err)
	}
	return strings.TrimSpace(result.Text()), nil
}

var _ llm.Client = (*Client)(nil)
