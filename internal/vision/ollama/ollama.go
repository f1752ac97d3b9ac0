package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/vision"
)

type OllamaSuggester struct {
	host   string
	model  string
	client *http.Client
}

func NewOllamaSuggester(host, model string) *OllamaSuggester {
	return &OllamaSuggester{
		host:   host,
		model:  model,
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (a *OllamaSuggester) SuggestRegions(ctx context.Context, r io.Reader, mimeType string) (*vision.SuggestionResult, error) {
	imageData, err := vision.ReadImage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"model":  a.model,
		"prompt": vision.RegionPrompt,
		"images": []string{base64.StdEncoding.EncodeToString(imageData)},
		"stream": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Error("failed to close ollama response body", zap.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var respBody struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &vision.SuggestionResult{
		Regions:     vision.ParseResponse(respBody.Response),
		RawResponse: respBody.Response,
	}, nil
}
