// Package composer turns a day's notes into one digest-generation request
// and hands back the raw response text.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoContent means there is nothing to summarize; the remote service is
// never called in that case.
var ErrNoContent = errors.New("no notes to summarize")

const promptTemplate = "Act as a senior copywriter. Write like a human, for humans. " +
	"Craft engaging social media posts tailored for %s audiences, in a %s tone, " +
	"each creatively highlighting the following events: %s"

// Generator is the single outbound contract to the generation service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Settings carries the sender's digest preferences. Zero values fall back
// to the defaults of the standard pipeline.
type Settings struct {
	Tone      string
	Platforms string
}

const (
	defaultTone      = "neutral"
	defaultPlatforms = "LinkedIn, Facebook, Twitter"
)

// BuildPrompt assembles the instructional template around the note texts.
func BuildPrompt(notes []string, s Settings) string {
	tone := s.Tone
	if tone == "" {
		tone = defaultTone
	}
	platforms := strings.TrimSpace(s.Platforms)
	if platforms == "" {
		platforms = defaultPlatforms
	} else {
		platforms = strings.Join(splitCSV(platforms), ", ")
	}
	return fmt.Sprintf(promptTemplate, platforms, tone, strings.Join(notes, ", "))
}

// Compose issues exactly one generation request for the given notes and
// returns the raw response text unmodified. Empty input short-circuits
// with ErrNoContent before any remote call.
func Compose(ctx context.Context, gen Generator, notes []string, s Settings) (string, error) {
	if len(notes) == 0 {
		return "", ErrNoContent
	}

	text, err := gen.Generate(ctx, BuildPrompt(notes, s))
	if err != nil {
		return "", fmt.Errorf("generate digest: %w", err)
	}
	return text, nil
}

func splitCSV(s string) []string {
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
