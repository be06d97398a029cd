// Package cards loads card definitions from a YAML catalog and deals decks
// built from them into a game.
package cards

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jigoku/jigoku-server-go/internal/game"
)

// ErrUnknownCard is returned when a deck names a code the catalog lacks.
var ErrUnknownCard = errors.New("unknown card")

var knownTypes = map[game.CardType]bool{
	game.CardTypeCharacter:  true,
	game.CardTypeAttachment: true,
	game.CardTypeEvent:      true,
	game.CardTypeHolding:    true,
	game.CardTypeProvince:   true,
	game.CardTypeStronghold: true,
}

type catalogFile struct {
	Cards []game.CardDefinition `yaml:"cards"`
}

// Catalog is an immutable set of card definitions keyed by code.
type Catalog struct {
	cards map[string]game.CardDefinition
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse card catalog: %w", err)
	}
	c := &Catalog{cards: make(map[string]game.CardDefinition, len(f.Cards))}
	for i, def := range f.Cards {
		if def.Code == "" {
			return nil, fmt.Errorf("card %d (%s) has no code", i, def.Name)
		}
		if def.Name == "" {
			return nil, fmt.Errorf("card %s has no name", def.Code)
		}
		if !knownTypes[def.Type] {
			return nil, fmt.Errorf("card %s has unknown type %q", def.Code, def.Type)
		}
		if _, dup := c.cards[def.Code]; dup {
			return nil, fmt.Errorf("duplicate card code %s", def.Code)
		}
		if def.Side == "" {
			def.Side = defaultSide(def.Type)
		}
		c.cards[def.Code] = def
	}
	return c, nil
}

func defaultSide(t game.CardType) string {
	switch t {
	case game.CardTypeCharacter, game.CardTypeHolding:
		return "dynasty"
	case game.CardTypeAttachment, game.CardTypeEvent:
		return "conflict"
	}
	return "province"
}

// Lookup returns the definition for code.
func (c *Catalog) Lookup(code string) (game.CardDefinition, bool) {
	def, ok := c.cards[code]
	return def, ok
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.cards) }

// Codes returns every code in sorted order.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, len(c.cards))
	for code := range c.cards {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Definitions returns every definition sorted by code.
func (c *Catalog) Definitions() []game.CardDefinition {
	out := make([]game.CardDefinition, 0, len(c.cards))
	for _, code := range c.Codes() {
		out = append(out, c.cards[code])
	}
	return out
}
