package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/abhisek/examly/internal/store"
)

// NewProvider builds the provider cfg selects, wrapped as
// retry → logging → provider. repo may be nil.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo, log zerolog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	switch cfg.Provider {
	case ProviderAnthropic:
		base = newAnthropic(cfg)
	case ProviderOpenAI:
		base = newOpenAI(cfg)
	case ProviderOpenRouter:
		base = newOpenRouter(cfg)
	case ProviderGemini:
		p, err := newGemini(ctx, cfg)
		if err != nil {
			return nil, err
		}
		base = p
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}

	log.Debug().Str("provider", base.Name()).Str("model", base.ModelID()).Msg("llm provider ready")
	return WithRetry(WithLogging(base, repo, log), cfg.Retry, cfg.Timeout, log), nil
}
