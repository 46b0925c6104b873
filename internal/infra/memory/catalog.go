package memory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"kidlearn-service/internal/domain"
)

// Catalog is a fixed, ordered list of games.
type Catalog struct {
	games []domain.Game
	byID  map[string]domain.Game
}

func NewCatalog(games []domain.Game) *Catalog {
	byID := make(map[string]domain.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	return &Catalog{games: games, byID: byID}
}

// LoadCatalogFile reads a YAML list of games.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Games []domain.Game `yaml:"games"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return NewCatalog(doc.Games), nil
}

func (c *Catalog) Games(_ context.Context) ([]domain.Game, error) {
	out := make([]domain.Game, len(c.games))
	copy(out, c.games)
	return out, nil
}

func (c *Catalog) Game(_ context.Context, gameID string) (domain.Game, error) {
	g, ok := c.byID[gameID]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return g, nil
}
