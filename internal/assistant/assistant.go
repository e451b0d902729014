// Package assistant drafts and translates news copy with a generative
// model. Both operations degrade to a usable string instead of failing.
package assistant

import (
	"context"
	"strings"

	"fmasite/pkg/logger"
)

// DraftFallback is returned when no draft could be generated.
const DraftFallback = "Impossible de générer le brouillon pour le moment."

var draftSampling = Sampling{Temperature: 0.7, TopP: 0.95}

type Assistant struct {
	gen Generator
}

// New returns an Assistant. A nil generator is allowed and makes every
// call return its fallback.
func New(gen Generator) *Assistant {
	return &Assistant{gen: gen}
}

// Draft writes a short article about topic.
func (a *Assistant) Draft(ctx context.Context, topic string) string {
	if a.gen == nil {
		return DraftFallback
	}
	prompt := "Rédige un article court (200 mots) sur les Filles de Marie Auxiliatrice de Madagascar concernant le sujet suivant: " +
		strings.TrimSpace(topic) +
		". L'article doit être inspirant, axé sur la jeunesse et l'éducation salésienne."

	text, err := a.gen.Generate(ctx, prompt, draftSampling)
	if err != nil {
		logger.Sugar.Errorf("Draft generation failed: %v", err)
		return DraftFallback
	}
	return text
}

// Translate renders text in formal Malagasy, or returns it unchanged when
// the model is unavailable.
func (a *Assistant) Translate(ctx context.Context, text string) string {
	if a.gen == nil || strings.TrimSpace(text) == "" {
		return text
	}
	out, err := a.gen.Generate(ctx, "Traduis ce texte en Malagasy formel: "+text, Sampling{})
	if err != nil {
		logger.Sugar.Errorf("Translation failed: %v", err)
		return text
	}
	return out
}
