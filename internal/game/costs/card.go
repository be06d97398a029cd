package costs

import (
	"fmt"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/actions"
	"github.com/jigoku/jigoku-server-go/internal/game/targeting"
)

// BowSelf bows the card that initiated the ability.
func BowSelf() *ActionCost {
	return GameActionCost(actions.Bow(self()))
}

// Bow bows a card the player selects.
func Bow(props SelectProperties) *SelectCardCost {
	return selectCost(actions.Bow(actions.Static(actions.CardProperties{})), props, "Select card to bow")
}

// SacrificeSelf sacrifices the card that initiated the ability.
func SacrificeSelf() *ActionCost {
	return GameActionCost(actions.Sacrifice(self()))
}

// Sacrifice sacrifices a card the player selects.
func Sacrifice(props SelectProperties) *SelectCardCost {
	return selectCost(actions.Sacrifice(actions.Static(actions.CardProperties{})), props, "Select card to sacrifice")
}

// ReturnSelfToHand returns the card that initiated the ability to hand.
func ReturnSelfToHand() *ActionCost {
	return GameActionCost(actions.ReturnToHand(self()))
}

// DiscardSelf discards the card that initiated the ability from hand.
func DiscardSelf() *ActionCost {
	return GameActionCost(actions.DiscardCard(self()))
}

// DiscardCard discards exactly NumCards (one by default) cards the player
// selects from hand.
func DiscardCard(props SelectProperties) *SelectCardCost {
	if len(props.Locations) == 0 {
		props.Locations = []game.Location{game.LocationHand}
	}
	if props.Mode == "" {
		props.Mode = targeting.ModeExactly
	}
	title := "Select card to discard"
	if props.NumCards > 1 {
		title = fmt.Sprintf("Select %d cards to discard", props.NumCards)
	}
	return selectCost(actions.DiscardCard(actions.Static(actions.CardProperties{})), props, title)
}

// RemoveFateFromSelf removes a fate from the card that initiated the
// ability.
func RemoveFateFromSelf() *ActionCost {
	return GameActionCost(actions.RemoveFate(actions.Derived(func(ctx *game.AbilityContext) actions.FateProperties {
		return actions.FateProperties{CardProperties: actions.CardProperties{Target: game.CardValue(ctx.SourceCard())}}
	})))
}

// RemoveFate removes a fate from a character the player selects.
func RemoveFate(props SelectProperties) *SelectCardCost {
	return selectCost(actions.RemoveFate(actions.Static(actions.FateProperties{})), props, "Select character to discard a fate from")
}

// DishonorSelf dishonors the character that initiated the ability.
func DishonorSelf() *ActionCost {
	return GameActionCost(actions.Dishonor(self()))
}

// Dishonor dishonors a character the player selects.
func Dishonor(props SelectProperties) *SelectCardCost {
	return selectCost(actions.Dishonor(actions.Static(actions.CardProperties{})), props, "Select character to dishonor")
}

// BreakSelf breaks the province that initiated the ability.
func BreakSelf() *ActionCost {
	return GameActionCost(actions.Break(self()))
}

func selectCost(action game.Action, props SelectProperties, title string) *SelectCardCost {
	if props.ActivePromptTitle == "" {
		props.ActivePromptTitle = title
	}
	return MetaActionCost(action, props)
}
