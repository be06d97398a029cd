package cards

import (
	"fmt"

	"github.com/jigoku/jigoku-server-go/internal/game"
)

// Deck is a deck list by card code. Decks are dealt in list order; the top
// of each deck is its first entry.
type Deck struct {
	Stronghold string   `yaml:"stronghold" json:"stronghold"`
	Provinces  []string `yaml:"provinces" json:"provinces"`
	Dynasty    []string `yaml:"dynasty" json:"dynasty"`
	Conflict   []string `yaml:"conflict" json:"conflict"`
}

var provinceSlots = []game.Location{
	game.LocationProvinceOne,
	game.LocationProvinceTwo,
	game.LocationProvinceThree,
	game.LocationProvinceFour,
}

// Validate checks every code against the catalog and the deck shape.
func (c *Catalog) Validate(d Deck) error {
	if len(d.Provinces) > len(provinceSlots) {
		return fmt.Errorf("deck has %d provinces, at most %d fit", len(d.Provinces), len(provinceSlots))
	}
	check := func(code string, want ...game.CardType) error {
		def, ok := c.cards[code]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCard, code)
		}
		for _, t := range want {
			if def.Type == t {
				return nil
			}
		}
		return fmt.Errorf("card %s is a %s, expected %v", code, def.Type, want)
	}
	if d.Stronghold != "" {
		if err := check(d.Stronghold, game.CardTypeStronghold); err != nil {
			return err
		}
	}
	for _, code := range d.Provinces {
		if err := check(code, game.CardTypeProvince); err != nil {
			return err
		}
	}
	for _, code := range d.Dynasty {
		if err := check(code, game.CardTypeCharacter, game.CardTypeHolding); err != nil {
			return err
		}
	}
	for _, code := range d.Conflict {
		if err := check(code, game.CardTypeCharacter, game.CardTypeAttachment, game.CardTypeEvent); err != nil {
			return err
		}
	}
	return nil
}

// Deal creates the deck's cards for player: the stronghold in the
// stronghold slot, provinces in the numbered slots and both decks in list
// order. Every numbered province with a province card is then filled face
// down from the dynasty deck.
func (c *Catalog) Deal(g *game.Game, player *game.Player, d Deck) error {
	if err := c.Validate(d); err != nil {
		return err
	}
	if d.Stronghold != "" {
		g.CreateCard(player, c.cards[d.Stronghold], game.LocationStrongholdProvince)
	}
	for i, code := range d.Provinces {
		g.CreateCard(player, c.cards[code], provinceSlots[i])
	}
	for _, code := range d.Dynasty {
		g.CreateCard(player, c.cards[code], game.LocationDynastyDeck)
	}
	for _, code := range d.Conflict {
		g.CreateCard(player, c.cards[code], game.LocationConflictDeck)
	}
	for _, slot := range provinceSlots[:len(d.Provinces)] {
		player.ReplaceDynastyCard(slot)
	}
	return nil
}
