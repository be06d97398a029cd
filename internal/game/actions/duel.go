package actions

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// DuelProperties configure Duel.
type DuelProperties struct {
	// Target is the dueled characters; the context's card target by
	// default.
	Target   game.Value
	Optional bool

	Type game.DuelType
	// Challenger defaults to the source card.
	Challenger *game.Card
	// GameAction resolves against the duel's outcome. GameActionFor takes
	// precedence when set.
	GameAction    game.Action
	GameActionFor func(duel *game.Duel, ctx *game.AbilityContext) game.Action
	Message       string
	MessageArgs   func(duel *game.Duel, ctx *game.AbilityContext) []any
	Statistic     func(card *game.Card) int
	// ChallengerEffects and TargetEffects last until the duel finishes.
	ChallengerEffects []game.EffectFactory
	TargetEffects     []game.EffectFactory
	// RefuseGameAction lets the opponent refuse the duel by suffering it.
	RefuseGameAction game.Action
	// CostHandler replaces the honor transfer after bids are revealed. It
	// may still call flow.TransferHonorAfterBid.
	CostHandler func(ctx *game.AbilityContext, flow *DuelFlow)
}

// DuelAction initiates a duel between a challenger and target characters.
type DuelAction struct {
	props Properties[DuelProperties]
}

// Duel builds a DuelAction.
func Duel(props Properties[DuelProperties]) *DuelAction {
	return &DuelAction{props: props}
}

func (a *DuelAction) Name() string               { return "duel" }
func (a *DuelAction) EventName() rules.EventName { return rules.EventDuelInitiated }

func (a *DuelAction) GetProperties(ctx *game.AbilityContext, o game.Overrides) DuelProperties {
	p := a.props.Evaluate(ctx)
	if p.Challenger == nil {
		p.Challenger = ctx.SourceCard()
	}
	if p.Target.IsEmpty() {
		switch ctx.Target.Kind() {
		case game.ValueCard, game.ValueCards:
			p.Target = ctx.Target
		}
	}
	applyOverrides(&p.Target, &p.Optional, o)
	return p
}

// Effect returns the match log fragment describing the duel.
func (a *DuelAction) Effect(ctx *game.AbilityContext) (string, []any) {
	p := a.GetProperties(ctx, game.Overrides{})
	targets := p.Target.Cards()
	placeholders := make([]string, len(targets))
	args := []any{p.Challenger}
	for i, t := range targets {
		placeholders[i] = "{" + strconv.Itoa(i+1) + "}"
		args = append(args, t)
	}
	return "initiate a " + string(p.Type) + " duel : {0} vs. " + strings.Join(placeholders, " and "), args
}

func duelDash(card *game.Card, t game.DuelType) bool {
	switch t {
	case game.DuelMilitary:
		return card.HasDash(game.ConflictMilitary)
	case game.DuelPolitical:
		return card.HasDash(game.ConflictPolitical)
	}
	return false
}

func (a *DuelAction) canAffectCard(card *game.Card, ctx *game.AbilityContext, p DuelProperties) bool {
	if ctx.Player == nil || ctx.Player.Opponent() == nil {
		return false
	}
	if card == nil || card.Type() != game.CardTypeCharacter || !card.AllowGameAction("duel", ctx) {
		return false
	}
	if card == p.Challenger || p.Challenger == nil {
		return false
	}
	return !duelDash(p.Challenger, p.Type) && card.Location == game.LocationPlayArea && !duelDash(card, p.Type)
}

func (a *DuelAction) CanAffect(target game.Value, ctx *game.AbilityContext, o game.Overrides) bool {
	cards := target.Cards()
	if len(cards) == 0 {
		return false
	}
	p := a.GetProperties(ctx, o)
	for _, card := range cards {
		if !a.canAffectCard(card, ctx, p) {
			return false
		}
	}
	return true
}

func (a *DuelAction) legalTargets(ctx *game.AbilityContext, p DuelProperties) []*game.Card {
	var cards []*game.Card
	for _, card := range p.Target.Cards() {
		if a.canAffectCard(card, ctx, p) {
			cards = append(cards, card)
		}
	}
	return cards
}

func (a *DuelAction) HasLegalTarget(ctx *game.AbilityContext, o game.Overrides) bool {
	return len(a.legalTargets(ctx, a.GetProperties(ctx, o))) > 0
}

func (a *DuelAction) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	p := a.GetProperties(ctx, o)
	addDuelEvent := func() {
		cards := a.legalTargets(ctx, p)
		if len(cards) == 0 {
			return
		}
		duel := game.NewDuel(ctx.Game, p.Challenger, cards, p.Type, p.Statistic, ctx.Player)
		*events = append(*events, game.NewActionEvent(a, game.EventParams{
			Context: ctx,
			Card:    p.Challenger,
			Cards:   cards,
			Duel:    duel,
		}, o))
	}
	refuse := p.RefuseGameAction
	opponent := ctx.Player.Opponent()
	if refuse == nil || opponent == nil || !refuse.HasLegalTarget(ctx, o) {
		addDuelEvent()
		return
	}
	ctx.Game.PromptWithHandlerMenu(opponent, game.MenuProperties{
		ActivePromptTitle: "Do you wish to refuse the duel?",
		Context:           ctx,
		Choices:           []string{"Yes", "No"},
		Handlers: []func(){
			func() {
				msg := "{0} chooses to refuse the duel"
				args := []any{opponent}
				if effecter, ok := refuse.(interface {
					Effect(*game.AbilityContext) (string, []any)
				}); ok {
					effect, effectArgs := effecter.Effect(ctx)
					msg += " and " + shiftPlaceholders(effect, 1)
					args = append(args, effectArgs...)
				}
				ctx.Game.AddMessage(msg, args...)
				refuse.AddEventsToArray(events, ctx, o)
			},
			addDuelEvent,
		},
	})
}

// shiftPlaceholders renumbers {N} placeholders by offset.
func shiftPlaceholders(format string, offset int) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] == '{' {
			if end := strings.IndexByte(format[i:], '}'); end > 1 {
				if n, err := strconv.Atoi(format[i+1 : i+end]); err == nil {
					b.WriteString("{" + strconv.Itoa(n+offset) + "}")
					i += end
					continue
				}
			}
		}
		b.WriteByte(format[i])
	}
	return b.String()
}

func (a *DuelAction) EventHandler(event *game.Event) {
	ctx := event.Context
	g := ctx.Game
	p := a.GetProperties(ctx, event.Overrides)
	duel := event.Duel
	targetsInPlay := false
	for _, card := range event.Cards {
		if card.Location == game.LocationPlayArea {
			targetsInPlay = true
		}
	}
	if p.Challenger.Location != game.LocationPlayArea || !targetsInPlay {
		g.AddMessage("The duel cannot proceed as at least one participant for each side has to be in play")
		return
	}
	until := map[rules.EventName]func(*game.Event) bool{
		rules.EventDuelFinished: func(e *game.Event) bool { return e.Duel == duel },
	}
	if len(p.ChallengerEffects) > 0 {
		LastingEffect{Effects: p.ChallengerEffects, Duration: game.DurationCustom, Until: until}.register(ctx, p.Challenger)
	}
	if len(p.TargetEffects) > 0 {
		for _, card := range event.Cards {
			LastingEffect{Effects: p.TargetEffects, Duration: game.DurationCustom, Until: until}.register(ctx, card)
		}
	}
	var costs func(*DuelFlow)
	if p.CostHandler != nil {
		costs = func(flow *DuelFlow) { p.CostHandler(ctx, flow) }
	}
	g.QueueStep(NewDuelFlow(g, duel, costs, func(d *game.Duel) { a.ResolveDuel(d, ctx, event.Overrides) }))
}

func (a *DuelAction) CheckEventCondition(event *game.Event) bool {
	p := a.GetProperties(event.Context, event.Overrides)
	for _, card := range event.Cards {
		if a.canAffectCard(card, event.Context, p) {
			return true
		}
	}
	return false
}

// ResolveDuel applies the duel's game action for its outcome, or logs that
// the duel has no effect.
func (a *DuelAction) ResolveDuel(duel *game.Duel, ctx *game.AbilityContext, o game.Overrides) {
	p := a.GetProperties(ctx, o)
	action := p.GameAction
	if p.GameActionFor != nil {
		action = p.GameActionFor(duel, ctx)
	}
	g := ctx.Game
	if action == nil || !action.HasLegalTarget(ctx, game.Overrides{}) {
		g.AddMessage("The duel has no effect")
		return
	}
	var (
		msg  string
		args []any
	)
	switch {
	case p.Message != "":
		msg = p.Message
		if p.MessageArgs != nil {
			args = p.MessageArgs(duel, ctx)
		}
	default:
		if effecter, ok := action.(interface {
			Effect(*game.AbilityContext) (string, []any)
		}); ok {
			msg, args = effecter.Effect(ctx)
		}
	}
	g.AddMessage("Duel Effect: "+msg, args...)
	g.ResolveGameAction(action, ctx, game.Overrides{})
}

// DuelFlow runs a duel once initiated: honor bids, honor transfer, result
// and resolution.
type DuelFlow struct {
	rules.StepWithPipeline

	game    *game.Game
	duel    *game.Duel
	costs   func(flow *DuelFlow)
	resolve func(duel *game.Duel)
}

// NewDuelFlow builds the duel step. costs, when set, replaces the default
// honor transfer. resolve applies the duel's effect.
func NewDuelFlow(g *game.Game, duel *game.Duel, costs func(flow *DuelFlow), resolve func(duel *game.Duel)) *DuelFlow {
	f := &DuelFlow{game: g, duel: duel, costs: costs, resolve: resolve}
	f.Pipeline = rules.NewPipeline(
		rules.NewSimpleStep("honor bids", f.promptForBids),
		rules.NewSimpleStep("reveal bids", f.revealBids),
		rules.NewSimpleStep("honor costs", f.payCosts),
		rules.NewSimpleStep("determine result", f.determineResult),
		rules.NewSimpleStep("apply duel result", f.applyResult),
		rules.NewSimpleStep("duel finished", f.finish),
	)
	return f
}

var bidChoices = []string{"1", "2", "3", "4", "5"}

// Duel returns the duel being run.
func (f *DuelFlow) Duel() *game.Duel { return f.duel }

// Bidders returns the players bidding in the duel, in first player order.
func (f *DuelFlow) Bidders() []*game.Player { return f.bidders() }

func (f *DuelFlow) bidders() []*game.Player {
	var out []*game.Player
	for _, p := range f.game.GetPlayersInFirstPlayerOrder() {
		if !p.IsDummy() {
			out = append(out, p)
		}
	}
	return out
}

func (f *DuelFlow) promptForBids() {
	for _, player := range f.bidders() {
		handlers := make([]func(), len(bidChoices))
		for i := range bidChoices {
			bid := i + 1
			handlers[i] = func() { player.HonorBid = bid }
		}
		f.game.PromptWithHandlerMenu(player, game.MenuProperties{
			ActivePromptTitle: "Choose your bid for the duel",
			Context:           f.game.GetFrameworkContext(player),
			Choices:           bidChoices,
			Handlers:          handlers,
		})
	}
}

func (f *DuelFlow) revealBids() {
	g := f.game
	for _, player := range f.bidders() {
		g.AddMessage("{0} reveals a bid of {1}", player, player.HonorBid)
	}
	g.RaiseEvent(rules.EventHonorBidsRevealed, game.EventParams{
		Context: g.GetFrameworkContext(f.duel.Player),
		Duel:    f.duel,
	})
}

func (f *DuelFlow) payCosts() {
	if f.costs != nil {
		f.costs(f)
		return
	}
	f.TransferHonorAfterBid()
}

// TransferHonorAfterBid makes the higher bidder give the difference in bids
// to the lower bidder.
func (f *DuelFlow) TransferHonorAfterBid() {
	players := f.bidders()
	if len(players) < 2 {
		return
	}
	high, low := players[0], players[1]
	if low.HonorBid > high.HonorBid {
		high, low = low, high
	}
	diff := high.HonorBid - low.HonorBid
	if diff == 0 {
		return
	}
	f.game.Logger().Debug("duel honor transfer",
		zap.String("duel_id", f.duel.ID),
		zap.String("from", high.ID),
		zap.String("to", low.ID),
		zap.Int("amount", diff),
	)
	f.game.ResolveGameAction(TakeHonor(Static(AmountProperties{Amount: diff})), f.game.GetFrameworkContext(low), game.Overrides{})
}

func (f *DuelFlow) determineResult() {
	f.duel.DetermineResult()
	msg, args := f.duel.Message()
	f.game.AddMessage(msg, args...)
}

func (f *DuelFlow) applyResult() {
	g := f.game
	event := game.NewActionEvent(&eventHandlerAction{
		name:  "resolveDuel",
		event: rules.EventDuelResolution,
		fn:    func(*game.Event) { f.resolve(f.duel) },
	}, game.EventParams{Context: g.GetFrameworkContext(f.duel.Player), Duel: f.duel}, game.Overrides{})
	g.OpenEventWindow(event)
}

func (f *DuelFlow) finish() {
	f.duel.Finished = true
	f.game.RaiseEvent(rules.EventDuelFinished, game.EventParams{
		Context: f.game.GetFrameworkContext(f.duel.Player),
		Duel:    f.duel,
	})
}
