package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"moodbot/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// Catalog resolves free-form model ids against the provider's /models
// listing. The listing schema carries per-model pricing, which the
// completion client's model type does not expose, so this is a direct HTTP
// call.
type Catalog struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCatalog(baseURL, apiKey string) *Catalog {
	return &Catalog{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

type modelListing struct {
	Data []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Pricing struct {
			Prompt     string `json:"prompt"`
			Completion string `json:"completion"`
		} `json:"pricing"`
	} `json:"data"`
}

// FindModel returns the listed model with the given id, or nil when the
// provider does not know it.
func (c *Catalog) FindModel(ctx context.Context, id string) (*domain.RemoteModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("error creating models request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.RemoteCallError{Err: fmt.Errorf("models request failed: %w", err)}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &domain.RemoteCallError{
			Err: fmt.Errorf("unexpected status code from models listing: %d", res.StatusCode),
		}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading models response: %w", err)
	}

	var listing modelListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("error unmarshalling models response: %w", err)
	}

	log.Debug().Int("models", len(listing.Data)).Msg("fetched model listing")

	for _, m := range listing.Data {
		if m.ID == id {
			return &domain.RemoteModel{
				ID:              m.ID,
				Name:            m.Name,
				PromptPrice:     m.Pricing.Prompt,
				CompletionPrice: m.Pricing.Completion,
			}, nil
		}
	}

	return nil, nil
}
