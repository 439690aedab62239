package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ChaseRain/coverstudio/internal/infra/httpclient"
	"github.com/ChaseRain/coverstudio/internal/infra/logger"
	"github.com/ChaseRain/coverstudio/pkg/errors"
)

// Service calls the Gemini generateContent REST endpoint directly.
type Service struct {
	baseURL    string
	apiKey     KeySource
	httpClient *httpclient.Client
	logger     *logger.Logger
}

func New(baseURL string, apiKey KeySource, client *httpclient.Client, log *logger.Logger) *Service {
	return &Service{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: client,
		logger:     log,
	}
}

func (s *Service) Generate(ctx context.Context, call Call) (*Image, error) {
	parts := []map[string]interface{}{
		{
			"text": call.Prompt,
		},
	}
	if call.Reference != nil {
		parts = append(parts, map[string]interface{}{
			"inlineData": map[string]string{
				"mimeType": call.Reference.MIMEType,
				"data":     base64.StdEncoding.EncodeToString(call.Reference.Data),
			},
		})
	}

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": parts,
			},
		},
		"generationConfig": map[string]interface{}{
			"responseModalities": []string{"TEXT", "IMAGE"},
			"imageConfig": map[string]string{
				"aspectRatio": string(call.AspectRatio),
			},
		},
	}

	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, call.Model)
	headers := map[string]string{"x-goog-api-key": s.apiKey()}

	resp, err := s.httpClient.PostJSON(ctx, url, bodyBytes, headers)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGenerationAPI, "image generation API request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("image gen API error", "status", resp.StatusCode, "body", string(respBody))
		return nil, errors.New(errors.ErrCodeGenerationAPI, apiErrorMessage(resp.StatusCode, respBody))
	}

	return s.parseResponse(respBody)
}

func (s *Service) parseResponse(body []byte) (*Image, error) {
	var response struct {
		Candidates []struct {
			Content *struct {
				Parts []struct {
					Text       string `json:"text,omitempty"`
					InlineData *struct {
						MimeType string `json:"mimeType"`
						Data     string `json:"data"`
					} `json:"inlineData,omitempty"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		PromptFeedback *struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to parse image gen response")
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil || len(response.Candidates[0].Content.Parts) == 0 {
		reason := ""
		if response.PromptFeedback != nil {
			reason = response.PromptFeedback.BlockReason
		} else if len(response.Candidates) > 0 {
			reason = response.Candidates[0].FinishReason
		}
		return nil, emptyResponse(reason)
	}

	for _, part := range response.Candidates[0].Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			imageBytes, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to decode image data")
			}
			return &Image{Data: imageBytes, MIMEType: mimeOrDefault(part.InlineData.MimeType)}, nil
		}
	}

	return nil, errors.New(errors.ErrCodeNoImage, "no image produced, try another style or prompt")
}

func apiErrorMessage(status int, body []byte) string {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return fmt.Sprintf("image generation API returned %d: %s", status, apiErr.Error.Message)
	}
	return fmt.Sprintf("image generation API returned %d", status)
}

func emptyResponse(reason string) error {
	if reason != "" {
		return errors.New(errors.ErrCodeEmptyResponse, "the image service returned an empty response ("+reason+")")
	}
	return errors.New(errors.ErrCodeEmptyResponse, "the image service returned an empty response")
}

func mimeOrDefault(mimeType string) string {
	if mimeType == "" {
		return "image/png"
	}
	return mimeType
}

var _ Generator = (*Service)(nil)
