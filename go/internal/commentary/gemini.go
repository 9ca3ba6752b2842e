package commentary

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
)

// TextGenerator is the slice of a model client the narrator needs
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, temperature float64) (string, error)
}

const defaultTemperature = 0.8

// GeminiNarrator asks a hosted model for commentary and remembers recent answers
type GeminiNarrator struct {
	client      TextGenerator
	temperature float64
	cache       *lru.Cache
}

// NewGeminiNarrator wraps client. cacheSize <= 0 disables caching.
func NewGeminiNarrator(client TextGenerator, cacheSize int) *GeminiNarrator {
	n := &GeminiNarrator{
		client:      client,
		temperature: defaultTemperature,
	}
	if cacheSize > 0 {
		cache, err := lru.New(cacheSize)
		if err != nil {
			log.Warn().Err(err).Int("cache_size", cacheSize).Msg("commentary cache disabled")
		} else {
			n.cache = cache
		}
	}
	return n
}

// Narrate implements Narrator.Narrate
func (n *GeminiNarrator) Narrate(ctx context.Context, req Request) string {
	key := req.key()
	if n.cache != nil {
		if v, ok := n.cache.Get(key); ok {
			return v.(string)
		}
	}

	text, err := n.client.GenerateText(ctx, Prompt(req), n.temperature)
	if err != nil {
		log.Warn().Err(err).Str("player", req.PlayerName).Msg("commentary generation failed")
		return FallbackError
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return FallbackEmpty
	}

	if n.cache != nil {
		n.cache.Add(key, text)
	}
	return text
}
