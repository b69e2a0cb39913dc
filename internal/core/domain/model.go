package domain

import "strconv"

// ModelSource tells whether a model comes from the static catalog or was
// resolved live against the provider's model listing.
type ModelSource string

const (
	SourceCatalog ModelSource = "catalog"
	SourceRemote  ModelSource = "remote"
)

type Deprecation struct {
	Warning      bool `mapstructure:"warning"`
	IsDeprecated bool `mapstructure:"is_deprecated"`
}

// ModelDescriptor is a config-driven catalog entry.
type ModelDescriptor struct {
	ID          string       `mapstructure:"id"`
	Name        string       `mapstructure:"name"`
	DisplayName string       `mapstructure:"display_name"`
	Template    string       `mapstructure:"template"`
	BadRussian  bool         `mapstructure:"bad_russian"`
	Price       int          `mapstructure:"price"`
	Deprecation *Deprecation `mapstructure:"deprecation"`
	Source      ModelSource  `mapstructure:"-"`
}

// FindModelByID returns the catalog entry with the given id, or nil.
func FindModelByID(models []ModelDescriptor, id string) *ModelDescriptor {
	for i := range models {
		if models[i].ID == id {
			m := models[i]
			m.Source = SourceCatalog
			return &m
		}
	}
	return nil
}

// RemoteModel is an entry of the provider's live model listing. Prices are
// per-token strings as returned by the listing endpoint.
type RemoteModel struct {
	ID              string
	Name            string
	PromptPrice     string
	CompletionPrice string
}

// IsFree reports whether both prompt and completion prices are zero.
// Unparsable prices count as paid.
func (m RemoteModel) IsFree() bool {
	return parsePrice(m.PromptPrice) == 0 && parsePrice(m.CompletionPrice) == 0
}

// PricePerMillion returns the prompt and completion prices in dollars per
// million tokens.
func (m RemoteModel) PricePerMillion() (prompt, completion float64) {
	return parsePrice(m.PromptPrice) * 1_000_000, parsePrice(m.CompletionPrice) * 1_000_000
}

func parsePrice(p string) float64 {
	if p == "" {
		return 0
	}
	v, err := strconv.ParseFloat(p, 64)
	if err != nil {
		return -1
	}
	return v
}
