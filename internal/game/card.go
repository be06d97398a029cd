package game

import (
	"github.com/google/uuid"
)

// CardDefinition is the printed data of a card.
type CardDefinition struct {
	Code          string   `yaml:"code"`
	Name          string   `yaml:"name"`
	Type          CardType `yaml:"type"`
	Side          string   `yaml:"side"`
	Cost          int      `yaml:"cost"`
	Military      int      `yaml:"military"`
	Political     int      `yaml:"political"`
	MilitaryDash  bool     `yaml:"military_dash"`
	PoliticalDash bool     `yaml:"political_dash"`
	Glory         int      `yaml:"glory"`
	Strength      int      `yaml:"strength"`
	Element       Element  `yaml:"element"`
	Traits        []string `yaml:"traits"`
	Unique        bool     `yaml:"unique"`
}

// Card is one physical card in a game. Cards are owned by the Game arena and
// refer back to their owner and controller by pointer.
type Card struct {
	ID         string
	Definition CardDefinition

	game       *Game
	owner      *Player
	controller *Player

	Location   Location
	Bowed      bool
	Fate       int
	Honored    bool
	Dishonored bool
	Tainted    bool
	InConflict bool
	IsBroken   bool
	FacedDown  bool
}

// CardSnapshot is an immutable copy of a card's state.
type CardSnapshot struct {
	ID           string
	Code         string
	Name         string
	Type         CardType
	ControllerID string
	Location     Location
	Bowed        bool
	Fate         int
	Honored      bool
	Dishonored   bool
	Tainted      bool
	Military     int
	Political    int
	Glory        int
	Traits       []string
}

func newCard(game *Game, owner *Player, def CardDefinition) *Card {
	return &Card{
		ID:         uuid.NewString(),
		Definition: def,
		game:       game,
		owner:      owner,
		controller: owner,
	}
}

func (c *Card) SourceID() string   { return c.ID }
func (c *Card) SourceName() string { return c.Definition.Name }
func (c *Card) EntityID() string   { return c.ID }

// Name returns the printed name.
func (c *Card) Name() string { return c.Definition.Name }

// Type returns the printed card type.
func (c *Card) Type() CardType { return c.Definition.Type }

// Owner returns the player who owns the card.
func (c *Card) Owner() *Player { return c.owner }

// Controller returns the player currently controlling the card.
func (c *Card) Controller() *Player { return c.controller }

// Game returns the game the card belongs to.
func (c *Card) Game() *Game { return c.game }

// HasTrait reports whether the card carries the printed trait.
func (c *Card) HasTrait(trait string) bool {
	for _, t := range c.Definition.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

// IsInPlay reports whether the card is in a play area (characters and
// attachments) or sits as a province.
func (c *Card) IsInPlay() bool {
	if c.Type() == CardTypeProvince || c.Type() == CardTypeStronghold {
		return c.Location.IsProvince()
	}
	return c.Location == LocationPlayArea
}

// HasDash reports whether the card has a dash in the given skill.
func (c *Card) HasDash(t ConflictType) bool {
	switch t {
	case ConflictMilitary:
		return c.Definition.MilitaryDash
	case ConflictPolitical:
		return c.Definition.PoliticalDash
	}
	return false
}

// GetGlory returns the card's glory after modifiers.
func (c *Card) GetGlory() int {
	glory := c.Definition.Glory + c.game.effects.SumInt(c, EffectModifyGlory)
	if glory < 0 {
		return 0
	}
	return glory
}

// GetMilitarySkill returns the military skill after effects and status.
func (c *Card) GetMilitarySkill() int {
	return c.skill(ConflictMilitary)
}

// GetPoliticalSkill returns the political skill after effects and status.
func (c *Card) GetPoliticalSkill() int {
	return c.skill(ConflictPolitical)
}

// GetSkill returns the skill of the given type.
func (c *Card) GetSkill(t ConflictType) int {
	return c.skill(t)
}

func (c *Card) skill(t ConflictType) int {
	if c.HasDash(t) {
		return 0
	}
	base, modify, set := c.Definition.Military, EffectModifyMilitarySkill, EffectSetMilitarySkill
	if t == ConflictPolitical {
		base, modify, set = c.Definition.Political, EffectModifyPoliticalSkill, EffectSetPoliticalSkill
	}
	engine := c.game.effects
	total := base + engine.SumInt(c, modify) + engine.SumInt(c, EffectModifyBothSkills)
	if v, ok := engine.MostRecent(c, set); ok {
		if n, ok := v.(int); ok {
			total = n
		}
	}
	if c.Honored {
		total += c.GetGlory()
	} else if c.Dishonored {
		total -= c.GetGlory()
	}
	if total < 0 {
		return 0
	}
	return total
}

// GetContributionToConflict returns what the card adds to a conflict of the
// given type by default.
func (c *Card) GetContributionToConflict(t ConflictType) int {
	return c.skill(t)
}

// GetStrength returns a province's strength after modifiers.
func (c *Card) GetStrength() int {
	engine := c.game.effects
	strength := c.Definition.Strength + engine.SumInt(c, EffectModifyProvinceStrength)
	if v, ok := engine.MostRecent(c, EffectSetProvinceStrength); ok {
		if n, ok := v.(int); ok {
			strength = n
		}
	}
	if c.Tainted {
		strength += 2
	}
	if strength < 0 {
		return 0
	}
	return strength
}

// GetCost returns the printed fate cost.
func (c *Card) GetCost() int { return c.Definition.Cost }

// AnyEffect reports whether an effect with the given name applies to the card.
func (c *Card) AnyEffect(name EffectName) bool {
	return c.game.effects.Any(c, name)
}

// GetEffects returns the values of the effects with the given name.
func (c *Card) GetEffects(name EffectName) []any {
	return c.game.effects.Get(c, name)
}

// CheckRestrictions reports whether nothing forbids the action type.
func (c *Card) CheckRestrictions(actionType string, ctx *AbilityContext) bool {
	if c.game == nil {
		return true
	}
	return c.game.effects.checkRestrictions(c, actionType, ctx)
}

// AllowGameAction reports whether a game action of the given name may affect
// this card.
func (c *Card) AllowGameAction(actionType string, ctx *AbilityContext) bool {
	return c.CheckRestrictions(actionType, ctx)
}

// CanParticipateAsAttacker reports whether the card may attack in a conflict
// of the given type.
func (c *Card) CanParticipateAsAttacker(t ConflictType) bool {
	if c.Type() != CardTypeCharacter || c.HasDash(t) {
		return false
	}
	return !c.blockedFrom(EffectCannotParticipateAsAttacker, t)
}

// CanParticipateAsDefender reports whether the card may defend in a conflict
// of the given type.
func (c *Card) CanParticipateAsDefender(t ConflictType) bool {
	if c.Type() != CardTypeCharacter || c.HasDash(t) {
		return false
	}
	return !c.blockedFrom(EffectCannotParticipateAsDefender, t)
}

func (c *Card) blockedFrom(name EffectName, t ConflictType) bool {
	for _, v := range c.GetEffects(name) {
		switch typ := v.(type) {
		case ConflictType:
			if typ == "" || typ == t {
				return true
			}
		default:
			return true
		}
	}
	return false
}

// IsAtHome reports whether the card is in play and not in the conflict.
func (c *Card) IsAtHome() bool {
	return c.Location == LocationPlayArea && !c.InConflict
}

// IsParticipating reports whether the card takes part in the current conflict.
func (c *Card) IsParticipating() bool {
	conflict := c.game.CurrentConflict()
	return conflict != nil && conflict.IsParticipating(c)
}

// IsAttacking reports whether the card is an attacker in the current conflict.
func (c *Card) IsAttacking() bool {
	conflict := c.game.CurrentConflict()
	return conflict != nil && conflict.IsAttacking(c)
}

// IsDefending reports whether the card is a defender in the current conflict.
func (c *Card) IsDefending() bool {
	conflict := c.game.CurrentConflict()
	return conflict != nil && conflict.IsDefending(c)
}

// CreateSnapshot copies the card's current state.
func (c *Card) CreateSnapshot() CardSnapshot {
	controllerID := ""
	if c.controller != nil {
		controllerID = c.controller.ID
	}
	return CardSnapshot{
		ID:           c.ID,
		Code:         c.Definition.Code,
		Name:         c.Definition.Name,
		Type:         c.Definition.Type,
		ControllerID: controllerID,
		Location:     c.Location,
		Bowed:        c.Bowed,
		Fate:         c.Fate,
		Honored:      c.Honored,
		Dishonored:   c.Dishonored,
		Tainted:      c.Tainted,
		Military:     c.GetMilitarySkill(),
		Political:    c.GetPoliticalSkill(),
		Glory:        c.GetGlory(),
		Traits:       append([]string(nil), c.Definition.Traits...),
	}
}

// leavePlay clears everything a card loses when it leaves play.
func (c *Card) leavePlay() {
	c.Bowed = false
	c.Fate = 0
	c.Honored = false
	c.Dishonored = false
	c.Tainted = false
	c.InConflict = false
	if conflict := c.game.CurrentConflict(); conflict != nil {
		conflict.RemoveFromConflict(c)
	}
	c.controller = c.owner
}
