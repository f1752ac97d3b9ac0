package claude

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/labinv/internal/vision"
)

// maxTokens bounds the reply; one line per region rarely exceeds a few hundred tokens.
const maxTokens = 1024

type ClaudeSuggester struct {
	client *anthropic.Client
	model  string
}

func NewClaudeSuggester(apiKey, model string, opts ...anthropic.ClientOption) *ClaudeSuggester {
	return &ClaudeSuggester{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (a *ClaudeSuggester) SuggestRegions(ctx context.Context, r io.Reader, mimeType string) (*vision.SuggestionResult, error) {
	imageData, err := vision.ReadImage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	prompt := vision.RegionPrompt
	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role: anthropic.RoleUser,
			Content: []anthropic.MessageContent{
				{
					Type: "image",
					Source: &anthropic.MessageContentSource{
						Type:      "base64",
						MediaType: normaliseMIME(mimeType),
						Data:      base64.StdEncoding.EncodeToString(imageData),
					},
				},
				{Type: "text", Text: &prompt},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}

	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" && c.Text != nil {
			text.WriteString(*c.Text)
		}
	}

	return &vision.SuggestionResult{
		Regions:     vision.ParseResponse(text.String()),
		RawResponse: text.String(),
	}, nil
}

// normaliseMIME maps MIME types to the values the Anthropic API accepts.
// Unknown types are sent as jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
