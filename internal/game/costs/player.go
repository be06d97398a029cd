package costs

import (
	"strconv"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/actions"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// Keys of the choices stored in the context's costs.
const (
	KeyVariableHonor = "variableHonorCost"
	KeyVariableFate  = "variableFateCost"
	KeyChooseFate    = "chooseFate"
	KeyOptionalFate  = "optionalFateCost"
	KeyHonorTransfer = "optionalHonorTransferFromOpponentCostPaid"
	KeyReturnRing    = "returnRing"
)

const choiceCancel = "Cancel"

// checkedCost is an action cost with an extra payability check.
type checkedCost struct {
	*ActionCost
	check func(ctx *game.AbilityContext) bool
}

func (c *checkedCost) CanPay(ctx *game.AbilityContext) bool {
	return c.check(ctx) && c.ActionCost.CanPay(ctx)
}

// DiscardImperialFavor makes the player discard the imperial favor.
func DiscardImperialFavor() *ActionCost {
	return GameActionCost(actions.LoseImperialFavor(actions.Static(actions.PlayerProperties{})))
}

// PayFate pays a fixed amount of fate that reducers cannot lower.
func PayFate(amount int) game.Cost {
	return &checkedCost{
		ActionCost: GameActionCost(actions.LoseFate(actions.Static(actions.AmountProperties{Amount: amount}))),
		check:      func(ctx *game.AbilityContext) bool { return canSpendFate(ctx, amount) },
	}
}

// PayHonor pays a fixed amount of honor.
func PayHonor(amount int) *ActionCost {
	return GameActionCost(actions.LoseHonor(actions.Static(actions.AmountProperties{Amount: amount})))
}

// opponentCost resolves an action as if the opponent used it against the
// paying player, so "take" actions move resources to the opponent.
type opponentCost struct {
	action game.Action
	check  func(ctx *game.AbilityContext) bool
}

func (c *opponentCost) opponentContext(ctx *game.AbilityContext) (*game.AbilityContext, bool) {
	opponent := ctx.Player.Opponent()
	if opponent == nil {
		return nil, false
	}
	return ctx.Copy(game.ContextProperties{Player: opponent}), true
}

func (c *opponentCost) CanPay(ctx *game.AbilityContext) bool {
	if c.check != nil && !c.check(ctx) {
		return false
	}
	octx, ok := c.opponentContext(ctx)
	return ok && c.action.HasLegalTarget(octx, game.Overrides{Target: game.PlayerValue(ctx.Player)})
}

func (c *opponentCost) PayEvents(ctx *game.AbilityContext) []*game.Event {
	octx, ok := c.opponentContext(ctx)
	if !ok {
		return nil
	}
	var events []*game.Event
	c.action.AddEventsToArray(&events, octx, game.Overrides{Target: game.PlayerValue(ctx.Player)})
	return events
}

// GiveHonorToOpponent transfers honor from the player to their opponent.
func GiveHonorToOpponent(amount int) game.Cost {
	return &opponentCost{action: actions.TakeHonor(actions.Static(actions.AmountProperties{Amount: amount}))}
}

// GiveFateToOpponent transfers fate from the player to their opponent.
func GiveFateToOpponent(amount int) game.Cost {
	return &opponentCost{
		action: actions.TakeFate(actions.Static(actions.AmountProperties{Amount: amount})),
		check:  func(ctx *game.AbilityContext) bool { return canSpendFate(ctx, amount) },
	}
}

// spendFate returns fate spent on a cost to the supply, optionally using up
// the reducers that lowered it.
type spendFate struct {
	markReducers bool
	ignoreType   bool
}

func (a *spendFate) Name() string               { return "spendFate" }
func (a *spendFate) EventName() rules.EventName { return rules.EventSpendFate }

func (a *spendFate) CanAffect(target game.Value, ctx *game.AbilityContext, _ game.Overrides) bool {
	return target.Player() != nil
}

func (a *spendFate) HasLegalTarget(ctx *game.AbilityContext, _ game.Overrides) bool {
	return ctx.Player != nil
}

func (a *spendFate) AddEventsToArray(*[]*game.Event, *game.AbilityContext, game.Overrides) {}

func (a *spendFate) event(ctx *game.AbilityContext, amount int) *game.Event {
	return game.NewActionEvent(a, game.EventParams{Context: ctx, Player: ctx.Player, Amount: amount}, game.Overrides{})
}

func (a *spendFate) EventHandler(e *game.Event) {
	if a.markReducers {
		if card := e.Context.SourceCard(); card != nil {
			e.Player.MarkUsedReducers(e.Context.PlayType, card, a.ignoreType)
		}
	}
	e.Player.ModifyFate(-e.Amount)
}

func (a *spendFate) CheckEventCondition(*game.Event) bool { return true }

type printedFateCost struct{}

// PayPrintedFateCost pays exactly the printed cost of the source card.
func PayPrintedFateCost() game.Cost { return printedFateCost{} }

func printedCost(ctx *game.AbilityContext) int {
	if card := ctx.SourceCard(); card != nil {
		return card.GetCost()
	}
	return 0
}

func (printedFateCost) CanPay(ctx *game.AbilityContext) bool {
	return canSpendFate(ctx, printedCost(ctx))
}

func (printedFateCost) PayEvents(ctx *game.AbilityContext) []*game.Event {
	return []*game.Event{(&spendFate{}).event(ctx, printedCost(ctx))}
}

type reduceableFateCost struct {
	ignoreType bool
}

// PayReduceableFateCost pays the source card's cost after the player's
// reducers and cost increases. Paying uses up the reducers that applied.
func PayReduceableFateCost(ignoreType bool) game.Cost {
	return reduceableFateCost{ignoreType: ignoreType}
}

func (c reduceableFateCost) amount(ctx *game.AbilityContext) int {
	card := ctx.SourceCard()
	if card == nil {
		return 0
	}
	return ctx.Player.GetReducedCost(ctx.PlayType, card, c.ignoreType)
}

func (c reduceableFateCost) CanPay(ctx *game.AbilityContext) bool {
	return canSpendFate(ctx, c.amount(ctx))
}

func (c reduceableFateCost) PayEvents(ctx *game.AbilityContext) []*game.Event {
	action := &spendFate{markReducers: true, ignoreType: c.ignoreType}
	return []*game.Event{action.event(ctx, c.amount(ctx))}
}

type variableHonorCost struct {
	amount func(ctx *game.AbilityContext) int
}

// VariableHonorCost lets the player pay between 1 and amount(ctx) honor.
func VariableHonorCost(amount func(ctx *game.AbilityContext) int) game.Cost {
	return &variableHonorCost{amount: amount}
}

func (c *variableHonorCost) CanPay(ctx *game.AbilityContext) bool {
	loseHonor := actions.LoseHonor(actions.Static(actions.AmountProperties{}))
	return c.amount(ctx) > 0 && loseHonor.CanAffect(game.PlayerValue(ctx.Player), ctx, game.Overrides{})
}

func (c *variableHonorCost) PromptsPlayer() bool { return true }

func (c *variableHonorCost) Resolve(ctx *game.AbilityContext, result *game.CostResult) {
	most := min(c.amount(ctx), ctx.Player.Honor)
	if most <= 0 {
		result.Cancelled = true
		return
	}
	choices, handlers := amountMenu(1, most, func(n int) { ctx.Costs[KeyVariableHonor] = game.AmountValue(n) })
	if result.CanCancel {
		choices = append(choices, choiceCancel)
		handlers = append(handlers, func() {
			ctx.Costs[KeyVariableHonor] = game.AmountValue(0)
			result.Cancelled = true
		})
	}
	ctx.Game.PromptWithHandlerMenu(ctx.Player, game.MenuProperties{
		ActivePromptTitle: "Choose how much honor to pay",
		Context:           ctx,
		Choices:           choices,
		Handlers:          handlers,
	})
}

func (c *variableHonorCost) PayEvents(ctx *game.AbilityContext) []*game.Event {
	amount := ctx.Costs[KeyVariableHonor].Amount()
	if amount <= 0 {
		return nil
	}
	var events []*game.Event
	actions.LoseHonor(actions.Static(actions.AmountProperties{Amount: amount})).AddEventsToArray(&events, ctx, game.Overrides{})
	return events
}

// VariableFateProperties configure VariableFateCost.
type VariableFateProperties struct {
	ActivePromptTitle string
	// MinAmount defaults to 1.
	MinAmount func(ctx *game.AbilityContext) int
	// MaxAmount is unlimited when nil.
	MaxAmount func(ctx *game.AbilityContext) int
}

type variableFateCost struct {
	props VariableFateProperties
}

// VariableFateCost lets the player choose how much fate to pay. Cost
// modifiers on the source card are folded into the range offered: an
// increase raises the minimum payable, a reduction pays for part of the
// chosen amount.
func VariableFateCost(props VariableFateProperties) game.Cost {
	if props.ActivePromptTitle == "" {
		props.ActivePromptTitle = "Choose how much fate to pay"
	}
	return &variableFateCost{props: props}
}

func (c *variableFateCost) minAmount(ctx *game.AbilityContext) int {
	if c.props.MinAmount == nil {
		return 1
	}
	return c.props.MinAmount(ctx)
}

func costModifiers(ctx *game.AbilityContext) int {
	card := ctx.SourceCard()
	if card == nil {
		return 0
	}
	return ctx.Player.CostModifiers(game.PlayTypeFromHand, card)
}

func canLoseFate(ctx *game.AbilityContext) bool {
	loseFate := actions.LoseFate(actions.Static(actions.AmountProperties{}))
	return ctx.Player.CheckRestrictions(game.RestrictionSpendFate, ctx) &&
		loseFate.CanAffect(game.PlayerValue(ctx.Player), ctx, game.Overrides{})
}

func (c *variableFateCost) CanPay(ctx *game.AbilityContext) bool {
	mods := costModifiers(ctx)
	return mods < 0 || (ctx.Player.Fate >= c.minAmount(ctx)+mods && canLoseFate(ctx))
}

func (c *variableFateCost) PromptsPlayer() bool { return true }

func (c *variableFateCost) Resolve(ctx *game.AbilityContext, result *game.CostResult) {
	mods := costModifiers(ctx)
	lo := c.minAmount(ctx)
	hi := ctx.Player.Fate - mods
	if c.props.MaxAmount != nil {
		hi = min(hi, c.props.MaxAmount(ctx))
	}
	if !canLoseFate(ctx) {
		hi = min(hi, -mods)
	}
	choices, handlers := amountMenu(lo, hi, func(n int) { ctx.Costs[KeyVariableFate] = game.AmountValue(max(n, 0)) })
	if result.CanCancel {
		choices = append(choices, choiceCancel)
		handlers = append(handlers, func() {
			ctx.Costs[KeyVariableFate] = game.AmountValue(0)
			result.Cancelled = true
		})
	}
	if len(choices) == 0 {
		result.Cancelled = true
		return
	}
	ctx.Game.PromptWithHandlerMenu(ctx.Player, game.MenuProperties{
		ActivePromptTitle: c.props.ActivePromptTitle,
		Context:           ctx,
		Choices:           choices,
		Handlers:          handlers,
	})
}

// PayEvents pays the chosen amount less any reduction. Increases were
// already charged through the card's cost.
func (c *variableFateCost) PayEvents(ctx *game.AbilityContext) []*game.Event {
	cost := ctx.Costs[KeyVariableFate].Amount() + min(0, costModifiers(ctx))
	if cost <= 0 {
		return nil
	}
	var events []*game.Event
	actions.LoseFate(actions.Static(actions.AmountProperties{Amount: cost})).AddEventsToArray(&events, ctx, game.Overrides{})
	return events
}

type chooseFateCost struct {
	playType game.PlayType
}

// ChooseFate asks how much additional fate to place on a character being
// played. Amounts are offered three at a time with "More" reaching further.
func ChooseFate(playType game.PlayType) game.Cost {
	return &chooseFateCost{playType: playType}
}

func (c *chooseFateCost) CanPay(*game.AbilityContext) bool { return true }

func (c *chooseFateCost) PromptsPlayer() bool { return true }

func (c *chooseFateCost) extraFate(ctx *game.AbilityContext) int {
	p := ctx.Player
	if !p.CheckRestrictions(game.RestrictionPlaceFateWhenPlaying, ctx) ||
		c.playType == game.PlayTypeFromProvince && !p.CheckRestrictions(game.RestrictionPlaceFateFromProvince, ctx) ||
		!p.CheckRestrictions(game.RestrictionSpendFate, ctx) {
		return 0
	}
	extra := p.Fate
	if card := ctx.SourceCard(); card != nil {
		extra -= p.GetReducedCost(c.playType, card, false)
	}
	return max(extra, 0)
}

func (c *chooseFateCost) Resolve(ctx *game.AbilityContext, result *game.CostResult) {
	ctx.Costs[KeyChooseFate] = game.AmountValue(0)
	c.prompt(ctx, result, 0, c.extraFate(ctx))
}

func (c *chooseFateCost) prompt(ctx *game.AbilityContext, result *game.CostResult, base, extra int) {
	choose := func(n int) { ctx.Costs[KeyChooseFate] = game.AmountValue(n) }
	var choices []string
	var handlers []func()
	if extra-base > 3 {
		choices, handlers = amountMenu(base, base+2, choose)
		choices = append(choices, "More")
		handlers = append(handlers, func() { c.prompt(ctx, result, base+3, extra) })
	} else {
		choices, handlers = amountMenu(base, extra, choose)
	}
	if result.CanCancel {
		choices = append(choices, choiceCancel)
		handlers = append(handlers, func() { result.Cancelled = true })
	}
	ctx.Game.PromptWithHandlerMenu(ctx.Player, game.MenuProperties{
		ActivePromptTitle: "Choose additional fate",
		Context:           ctx,
		Choices:           choices,
		Handlers:          handlers,
	})
}

func (c *chooseFateCost) Pay(ctx *game.AbilityContext) {
	if n := ctx.Costs[KeyChooseFate].Amount(); n > 0 {
		ctx.Player.ModifyFate(-n)
	}
}

type optionalFateCost struct {
	amount int
}

// OptionalFateCost offers to spend amount fate. Declining still lets the
// ability resolve; abilities read the choice from the context's costs.
func OptionalFateCost(amount int) game.Cost {
	return &optionalFateCost{amount: amount}
}

func (c *optionalFateCost) CanPay(*game.AbilityContext) bool { return true }

func (c *optionalFateCost) PromptsPlayer() bool { return true }

func (c *optionalFateCost) Resolve(ctx *game.AbilityContext, result *game.CostResult) {
	ctx.Costs[KeyOptionalFate] = game.AmountValue(0)
	if !canSpendFate(ctx, c.amount) {
		return
	}
	choices := []string{"Yes", "No"}
	handlers := []func(){
		func() { ctx.Costs[KeyOptionalFate] = game.AmountValue(c.amount) },
		func() {},
	}
	if result.CanCancel {
		choices = append(choices, choiceCancel)
		handlers = append(handlers, func() { result.Cancelled = true })
	}
	ctx.Game.PromptWithHandlerMenu(ctx.Player, game.MenuProperties{
		ActivePromptTitle: "Spend " + strconv.Itoa(c.amount) + " fate?",
		Context:           ctx,
		Choices:           choices,
		Handlers:          handlers,
	})
}

func (c *optionalFateCost) Pay(ctx *game.AbilityContext) {
	if n := ctx.Costs[KeyOptionalFate].Amount(); n > 0 {
		ctx.Player.ModifyFate(-n)
	}
}

type honorTransferCost struct {
	condition func(ctx *game.AbilityContext) bool
}

// OptionalHonorTransferFromOpponentCost asks the opponent whether they give
// the player an honor. Either answer lets the ability resolve.
func OptionalHonorTransferFromOpponentCost(condition func(ctx *game.AbilityContext) bool) game.Cost {
	return &honorTransferCost{condition: condition}
}

func (c *honorTransferCost) CanPay(*game.AbilityContext) bool { return true }

func (c *honorTransferCost) PromptsPlayer() bool { return true }

func (c *honorTransferCost) Resolve(ctx *game.AbilityContext, _ *game.CostResult) {
	ctx.Costs[KeyHonorTransfer] = game.FlagValue(false)
	if c.condition != nil && !c.condition(ctx) {
		return
	}
	opponent := ctx.Player.Opponent()
	if opponent == nil {
		return
	}
	loseHonor := actions.LoseHonor(actions.Static(actions.AmountProperties{}))
	gainHonor := actions.GainHonor(actions.Static(actions.AmountProperties{}))
	if !loseHonor.CanAffect(game.PlayerValue(opponent), ctx, game.Overrides{}) ||
		!gainHonor.CanAffect(game.PlayerValue(ctx.Player), ctx, game.Overrides{}) {
		return
	}
	ctx.Game.PromptForYesNo(opponent, "Give an honor to your opponent?", ctx,
		func() { ctx.Costs[KeyHonorTransfer] = game.FlagValue(true) },
		func() {},
	)
}

func (c *honorTransferCost) PayEvents(ctx *game.AbilityContext) []*game.Event {
	if !ctx.Costs[KeyHonorTransfer].Flag() {
		return nil
	}
	opponent := ctx.Player.Opponent()
	ctx.Game.AddMessage("{0} chooses to give {1} 1 honor", opponent, ctx.Player)
	var events []*game.Event
	actions.TakeHonor(actions.Static(actions.AmountProperties{
		PlayerProperties: actions.PlayerProperties{Target: game.PlayerValue(opponent)},
		Amount:           1,
	})).AddEventsToArray(&events, ctx, game.Overrides{})
	return events
}

// amountMenu offers every amount from lo to hi.
func amountMenu(lo, hi int, choose func(n int)) ([]string, []func()) {
	var choices []string
	var handlers []func()
	for n := lo; n <= hi; n++ {
		choices = append(choices, strconv.Itoa(n))
		handlers = append(handlers, func() { choose(n) })
	}
	return choices, handlers
}
