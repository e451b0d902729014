package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-1.5-flash"

var ErrEmptyResponse = errors.New("assistant: model returned no text")

// Sampling carries the optional generation parameters of one request.
// Zero values leave the model defaults.
type Sampling struct {
	Temperature float32
	TopP        float32
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, s Sampling) (string, error)
}

// Gemini is a Generator backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string, s Sampling) (string, error) {
	m := g.client.GenerativeModel(g.model)
	if s.Temperature > 0 {
		m.SetTemperature(s.Temperature)
	}
	if s.TopP > 0 {
		m.SetTopP(s.TopP)
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}
