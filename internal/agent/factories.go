package agent

import (
	"fmt"

	"github.com/meetspot-ai/meetspot/config"
	"github.com/meetspot-ai/meetspot/provider"
	"github.com/meetspot-ai/meetspot/provider/openai"
)

// NewProvider builds the configured LLM provider.
func NewProvider(cfg config.LLMConfig) (provider.Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return openai.New(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// RequiredTools lists the tools every registry must carry for the
// system prompt's instructions to make sense.
var RequiredTools = []string{
	"geocode_locations",
	"calculate_center",
	"search_venues",
	"meetspot_recommend",
}
