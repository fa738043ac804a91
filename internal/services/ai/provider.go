package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/timecop-bot/timecop/internal/models"
)

// Extractor turns free-form text describing worked time into structured
// draft entries for a target date.
type Extractor interface {
	// ExtractEntries extracts one draft per distinct activity mentioned in
	// rawText. It returns an ExtractionError when the text yields no valid
	// entries and a transport or API error otherwise.
	ExtractEntries(ctx context.Context, rawText string, targetDate time.Time) ([]models.DraftEntry, error)
}

// ProviderFactory creates an extractor from provider configuration
type ProviderFactory func(config map[string]string) (Extractor, error)

// ProviderRegistry stores available extraction providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Extractor, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(config map[string]string) (Extractor, error) {
		apiKey, ok := config["api_key"]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}

		model := config["model"]
		baseURL := config["base_url"]

		return NewOpenAIExtractorWithConfig(apiKey, baseURL, model), nil
	})
}
