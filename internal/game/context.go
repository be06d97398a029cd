package game

import "github.com/google/uuid"

// ContextProperties configures a new AbilityContext. Zero fields take
// defaults: a neutral framework source, an empty ability, empty maps and
// StageEffect.
type ContextProperties struct {
	Game          *Game
	Source        EffectSource
	Player        *Player
	Ability       *Ability
	Costs         map[string]Value
	Targets       map[string]Value
	Rings         map[string]Value
	Selects       map[string]Value
	Tokens        map[string]Value
	Elements      map[string]Value
	Events        []*Event
	Stage         Stage
	TargetAbility *Ability
}

type provinceRefill struct {
	player   *Player
	location Location
}

// refillQueue is shared between a context and its copies.
type refillQueue struct {
	pending []provinceRefill
}

// ActionChain lists the game actions already applied for a resolution.
type ActionChain struct {
	actions []Action
}

// Add appends an action to the chain.
func (c *ActionChain) Add(a Action) { c.actions = append(c.actions, a) }

// Contains reports whether a has been applied.
func (c *ActionChain) Contains(a Action) bool {
	for _, have := range c.actions {
		if have == a {
			return true
		}
	}
	return false
}

// Len returns the chain length.
func (c *ActionChain) Len() int { return len(c.actions) }

// AbilityContext carries everything needed to resolve one ability
// invocation. Game, Source and Player never change after construction; the
// value maps are filled in as costs and targets resolve.
type AbilityContext struct {
	ID            string
	Game          *Game
	Source        EffectSource
	Player        *Player
	Ability       *Ability
	Costs         map[string]Value
	Targets       map[string]Value
	Rings         map[string]Value
	Selects       map[string]Value
	Tokens        map[string]Value
	Elements      map[string]Value
	Events        []*Event
	Stage         Stage
	TargetAbility *Ability

	Target                 Value
	Select                 string
	Ring                   *Ring
	Token                  Value
	Element                Element
	ElementCard            *Card
	TriggeringEvent        *Event
	SubResolution          bool
	ChoosingPlayerOverride *Player
	PlayType               PlayType
	ResolutionChain        *ActionChain

	refills *refillQueue
}

// NewAbilityContext builds a context, filling defaults and computing the
// play type once.
func NewAbilityContext(props ContextProperties) *AbilityContext {
	ctx := &AbilityContext{
		ID:              uuid.NewString(),
		Game:            props.Game,
		Source:          props.Source,
		Player:          props.Player,
		Ability:         props.Ability,
		Costs:           orEmpty(props.Costs),
		Targets:         orEmpty(props.Targets),
		Rings:           orEmpty(props.Rings),
		Selects:         orEmpty(props.Selects),
		Tokens:          orEmpty(props.Tokens),
		Elements:        orEmpty(props.Elements),
		Events:          props.Events,
		Stage:           props.Stage,
		TargetAbility:   props.TargetAbility,
		ResolutionChain: &ActionChain{},
		refills:         &refillQueue{},
	}
	if ctx.Source == nil && ctx.Game != nil {
		ctx.Source = ctx.Game.framework
	}
	if ctx.Ability == nil {
		ctx.Ability = &Ability{}
	}
	if ctx.Stage == "" {
		ctx.Stage = StageEffect
	}
	if ctx.Player != nil && ctx.Source != nil {
		ctx.PlayType = ctx.Player.FindPlayType(ctx.Source)
	}
	return ctx
}

func orEmpty(m map[string]Value) map[string]Value {
	if m == nil {
		return make(map[string]Value)
	}
	return m
}

// props returns the construction properties of c with every map cloned.
func (c *AbilityContext) props() ContextProperties {
	return ContextProperties{
		Game:          c.Game,
		Source:        c.Source,
		Player:        c.Player,
		Ability:       c.Ability,
		Costs:         cloneValues(c.Costs),
		Targets:       cloneValues(c.Targets),
		Rings:         cloneValues(c.Rings),
		Selects:       cloneValues(c.Selects),
		Tokens:        cloneValues(c.Tokens),
		Elements:      cloneValues(c.Elements),
		Events:        c.Events,
		Stage:         c.Stage,
		TargetAbility: c.TargetAbility,
	}
}

// Copy returns a context sharing game, source and player with c, whose value
// maps are shallow clones. Non-zero fields of overrides replace the copied
// properties. Scalar selections, the refill queue and the resolution chain
// carry over.
func (c *AbilityContext) Copy(overrides ContextProperties) *AbilityContext {
	p := c.props()
	if overrides.Game != nil {
		p.Game = overrides.Game
	}
	if overrides.Source != nil {
		p.Source = overrides.Source
	}
	if overrides.Player != nil {
		p.Player = overrides.Player
	}
	if overrides.Ability != nil {
		p.Ability = overrides.Ability
	}
	if overrides.Costs != nil {
		p.Costs = overrides.Costs
	}
	if overrides.Targets != nil {
		p.Targets = overrides.Targets
	}
	if overrides.Rings != nil {
		p.Rings = overrides.Rings
	}
	if overrides.Selects != nil {
		p.Selects = overrides.Selects
	}
	if overrides.Tokens != nil {
		p.Tokens = overrides.Tokens
	}
	if overrides.Elements != nil {
		p.Elements = overrides.Elements
	}
	if overrides.Events != nil {
		p.Events = overrides.Events
	}
	if overrides.Stage != "" {
		p.Stage = overrides.Stage
	}
	if overrides.TargetAbility != nil {
		p.TargetAbility = overrides.TargetAbility
	}

	copied := NewAbilityContext(p)
	copied.Target = c.Target
	copied.Token = c.Token
	copied.Element = c.Element
	copied.ElementCard = c.ElementCard
	copied.Select = c.Select
	copied.Ring = c.Ring
	copied.TriggeringEvent = c.TriggeringEvent
	copied.refills = c.refills
	copied.SubResolution = c.SubResolution
	copied.ChoosingPlayerOverride = c.ChoosingPlayerOverride
	copied.ResolutionChain = c.ResolutionChain
	copied.PlayType = c.PlayType
	return copied
}

// Conflict returns the game's current conflict.
func (c *AbilityContext) Conflict() *Conflict {
	if c.Game == nil {
		return nil
	}
	return c.Game.CurrentConflict()
}

// SourceCard returns the source as a card, or nil.
func (c *AbilityContext) SourceCard() *Card {
	card, _ := c.Source.(*Card)
	return card
}

// SourceRing returns the source as a ring, or nil.
func (c *AbilityContext) SourceRing() *Ring {
	ring, _ := c.Source.(*Ring)
	return ring
}

// RefillProvince queues a province refill to run when Refill is called.
func (c *AbilityContext) RefillProvince(player *Player, location Location) {
	c.refills.pending = append(c.refills.pending, provinceRefill{player: player, location: location})
}

// PendingRefills returns the number of queued province refills.
func (c *AbilityContext) PendingRefills() int {
	return len(c.refills.pending)
}

// Refill queues one step per pending province refill in first-player order,
// followed by a forced game state check.
func (c *AbilityContext) Refill() {
	pending := c.refills.pending
	c.refills.pending = nil
	for _, player := range c.Game.GetPlayersInFirstPlayerOrder() {
		for _, refill := range pending {
			if refill.player != player {
				continue
			}
			c.Game.QueueSimpleStep("refill province", func() {
				refill.player.ReplaceDynastyCard(refill.location)
			})
		}
	}
	c.Game.QueueSimpleStep("check game state", func() {
		c.Game.CheckGameState(true)
	})
}
