package imagegen

import (
	"context"
	"sync"

	"github.com/ChaseRain/coverstudio/internal/infra/logger"
	"github.com/ChaseRain/coverstudio/pkg/errors"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory builds a content generator for an API key.
type ClientFactory func(ctx context.Context, apiKey string) (contentGenerator, error)

func newGenAIModels(ctx context.Context, apiKey string) (contentGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// SDKService generates images through the official genai client. The client
// is rebuilt whenever the key returned by the KeySource changes.
type SDKService struct {
	apiKey     KeySource
	newClient  ClientFactory
	logger     *logger.Logger
	mu         sync.Mutex
	currentKey string
	client     contentGenerator
}

func NewSDK(apiKey KeySource, log *logger.Logger) *SDKService {
	return &SDKService{
		apiKey:    apiKey,
		newClient: newGenAIModels,
		logger:    log,
	}
}

func (s *SDKService) clientFor(ctx context.Context) (contentGenerator, error) {
	key := s.apiKey()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil && key == s.currentKey {
		return s.client, nil
	}
	client, err := s.newClient(ctx, key)
	if err != nil {
		return nil, err
	}
	s.client = client
	s.currentKey = key
	return client, nil
}

func (s *SDKService) Generate(ctx context.Context, call Call) (*Image, error) {
	client, err := s.clientFor(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGenerationAPI, "failed to create genai client")
	}

	parts := []*genai.Part{genai.NewPartFromText(call.Prompt)}
	if call.Reference != nil {
		parts = append(parts, genai.NewPartFromBytes(call.Reference.Data, call.Reference.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: string(call.AspectRatio),
		},
	}

	resp, err := client.GenerateContent(ctx, call.Model, contents, config)
	if err != nil {
		s.logger.Error("genai generate content failed", "model", call.Model, "error", err)
		return nil, errors.Wrap(err, errors.ErrCodeGenerationAPI, "image generation API request failed")
	}

	return parseGenAIResponse(resp)
}

func parseGenAIResponse(resp *genai.GenerateContentResponse) (*Image, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil ||
		resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		reason := ""
		if resp != nil && resp.PromptFeedback != nil {
			reason = string(resp.PromptFeedback.BlockReason)
		} else if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
			reason = string(resp.Candidates[0].FinishReason)
		}
		return nil, emptyResponse(reason)
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &Image{Data: part.InlineData.Data, MIMEType: mimeOrDefault(part.InlineData.MIMEType)}, nil
		}
	}

	return nil, errors.New(errors.ErrCodeNoImage, "no image produced, try another style or prompt")
}

var _ Generator = (*SDKService)(nil)
