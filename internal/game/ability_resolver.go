package game

import (
	"go.uber.org/zap"

	"github.com/jigoku/jigoku-server-go/internal/game/rules"
	"github.com/jigoku/jigoku-server-go/internal/game/targeting"
)

// AbilityResolver resolves one ability invocation: targets, costs, atomic
// payment, the initiate window, effects and refills.
type AbilityResolver struct {
	rules.StepWithPipeline

	game       *Game
	ctx        *AbilityContext
	result     CostResult
	cancelled  bool
	costEvents []*Event
	events     []*Event
}

// NewAbilityResolver creates the resolver step for ctx.
func NewAbilityResolver(g *Game, ctx *AbilityContext) *AbilityResolver {
	r := &AbilityResolver{game: g, ctx: ctx, result: CostResult{CanCancel: true}}
	r.Pipeline = rules.NewPipeline(
		rules.NewSimpleStep("check condition", r.checkCondition),
		rules.NewSimpleStep("resolve targets", r.resolveTargets),
		rules.NewSimpleStep("check targets", r.checkTargets),
		rules.NewSimpleStep("resolve costs", r.resolveCosts),
		rules.NewSimpleStep("check cancellation", r.checkCancellation),
		rules.NewSimpleStep("pay costs", r.payCosts),
		rules.NewSimpleStep("check cost events", r.checkCostEvents),
		rules.NewSimpleStep("initiate ability", r.initiateAbility),
		rules.NewSimpleStep("then", r.resolveThen),
		rules.NewSimpleStep("ability resolved", r.abilityResolved),
	)
	return r
}

// Cancelled reports whether resolution was aborted.
func (r *AbilityResolver) Cancelled() bool { return r.cancelled }

func (r *AbilityResolver) abort(reason string) {
	if r.cancelled {
		return
	}
	r.cancelled = true
	r.game.logger.Debug("ability resolution aborted",
		zap.String("game_id", r.game.ID),
		zap.String("context_id", r.ctx.ID),
		zap.String("reason", reason),
	)
}

func (r *AbilityResolver) checkCondition() {
	if c := r.ctx.Ability.Condition; c != nil && !c(r.ctx) {
		r.abort("condition")
	}
}

func (r *AbilityResolver) resolveTargets() {
	if r.cancelled {
		return
	}
	ctx := r.ctx
	ctx.Stage = StagePreTarget
	for _, t := range ctx.Ability.Targets {
		name := t.name()
		chooser := t.chooser(ctx)
		cancel := func(*Player) {
			if !t.Optional {
				r.result.Cancelled = true
			}
		}
		switch t.Kind {
		case TargetRing:
			r.game.PromptForRingSelect(chooser, SelectRingProperties{
				ActivePromptTitle: t.ActivePromptTitle,
				Context:           ctx,
				Optional:          t.Optional,
				RingCondition: func(ring *Ring, c *AbilityContext) bool {
					if t.RingCondition != nil && !t.RingCondition(ring, c) {
						return false
					}
					return t.canAffectAny(RingValue(ring), c)
				},
				OnSelect: func(_ *Player, ring *Ring) {
					ctx.Rings[name] = RingValue(ring)
					if ctx.Ring == nil {
						ctx.Ring = ring
					}
				},
				OnCancel: cancel,
			})
		case TargetSelect:
			var (
				choices  []string
				handlers []func()
			)
			for _, choice := range t.Choices {
				if choice.Condition != nil && !choice.Condition(ctx) {
					continue
				}
				choices = append(choices, choice.Name)
				handlers = append(handlers, func() {
					ctx.Selects[name] = TextValue(choice.Name)
					if ctx.Select == "" {
						ctx.Select = choice.Name
					}
				})
			}
			if len(choices) == 0 {
				cancel(chooser)
				continue
			}
			r.game.PromptWithHandlerMenu(chooser, MenuProperties{
				ActivePromptTitle: t.ActivePromptTitle,
				Context:           ctx,
				Choices:           choices,
				Handlers:          handlers,
			})
		default:
			props := t.selectCardProperties(ctx)
			props.OnSelect = func(_ *Player, cards []*Card) {
				var v Value
				if len(cards) == 1 && (t.Mode == "" || t.Mode == targeting.ModeSingle || t.Mode == targeting.ModeAutoSingle) {
					v = CardValue(cards[0])
				} else {
					v = CardsValue(cards...)
				}
				ctx.Targets[name] = v
				if ctx.Target.IsEmpty() {
					ctx.Target = v
				}
			}
			props.OnCancel = cancel
			r.game.PromptForSelect(chooser, props)
		}
	}
}

func (r *AbilityResolver) checkTargets() {
	if r.cancelled {
		return
	}
	if r.result.Cancelled {
		r.game.AddMessage("{0} cancels the resolution of {1} (no legal targets)", r.ctx.Player, r.ctx.Source)
		r.abort("targets")
	}
}

func (r *AbilityResolver) resolveCosts() {
	if r.cancelled {
		return
	}
	r.ctx.Stage = StageCost
	for _, cost := range r.ctx.Ability.Costs {
		if resolver, ok := cost.(CostResolver); ok {
			cost := resolver
			r.game.QueueSimpleStep("resolve cost", func() {
				if !r.result.Cancelled {
					cost.Resolve(r.ctx, &r.result)
				}
			})
		}
	}
}

func (r *AbilityResolver) checkCancellation() {
	if r.cancelled {
		return
	}
	if r.result.Cancelled {
		r.game.AddMessage("{0} cancels the resolution of {1}", r.ctx.Player, r.ctx.Source)
		r.abort("cost cancelled")
	}
}

// payCosts re-checks every cost before paying any of them.
func (r *AbilityResolver) payCosts() {
	if r.cancelled {
		return
	}
	ctx := r.ctx
	if !ctx.Ability.CanPayCosts(ctx) {
		r.game.AddMessage("{0} cannot pay the costs of {1}", ctx.Player, ctx.Source)
		r.abort("cannot pay")
		return
	}
	for _, cost := range ctx.Ability.Costs {
		if payer, ok := cost.(CostPayer); ok {
			payer.Pay(ctx)
		}
		if ec, ok := cost.(EventCost); ok {
			r.costEvents = append(r.costEvents, ec.PayEvents(ctx)...)
		}
	}
	if len(r.costEvents) > 0 {
		r.game.OpenEventWindow(r.costEvents...)
	}
}

func (r *AbilityResolver) checkCostEvents() {
	if r.cancelled {
		return
	}
	for _, e := range r.costEvents {
		if e.IsCancelled() {
			r.abort("cost event cancelled")
			return
		}
	}
}

func (r *AbilityResolver) initiateAbility() {
	if r.cancelled {
		return
	}
	ctx := r.ctx
	ctx.Stage = StageEffect
	event := r.game.newActionEvent(&handlerAction{
		name:  "initiateAbility",
		event: rules.EventInitiateAbilityEffects,
		fn:    func(*Event) { r.executeEffects() },
	}, EventParams{Context: ctx})
	r.events = append(r.events, event)
	r.game.OpenEventWindow(event)
}

func (r *AbilityResolver) executeEffects() {
	ctx := r.ctx
	if ctx.Ability.Title != "" {
		r.game.AddMessage("{0} uses {1}", ctx.Player, ctx.Ability.Title)
	}
	if ctx.Ability.Handler != nil {
		ctx.Ability.Handler(ctx)
	}
	if len(ctx.Ability.GameActions) > 0 {
		r.game.resolveActions(ctx, ctx.Ability.GameActions, Overrides{}, ctx.SubResolution, func(events []*Event) {
			r.events = append(r.events, events...)
		})
	}
}

func (r *AbilityResolver) resolveThen() {
	if r.cancelled || r.ctx.Ability.Then == nil {
		return
	}
	for _, e := range r.events {
		if e.IsCancelled() || !e.IsResolved() {
			return
		}
	}
	then := r.ctx.Copy(ContextProperties{Ability: r.ctx.Ability.Then})
	then.SubResolution = true
	r.game.QueueStep(NewAbilityResolver(r.game, then))
}

func (r *AbilityResolver) abilityResolved() {
	if r.cancelled {
		return
	}
	r.game.RaiseEvent(rules.EventAbilityResolved, EventParams{Context: r.ctx})
	if !r.ctx.SubResolution {
		r.ctx.Refill()
	}
}

// handlerAction is a framework action running a fixed handler.
type handlerAction struct {
	name  string
	event rules.EventName
	fn    func(*Event)
}

func (a *handlerAction) Name() string               { return a.name }
func (a *handlerAction) EventName() rules.EventName { return a.event }

func (a *handlerAction) CanAffect(Value, *AbilityContext, Overrides) bool { return true }

func (a *handlerAction) HasLegalTarget(*AbilityContext, Overrides) bool { return true }

func (a *handlerAction) AddEventsToArray(events *[]*Event, ctx *AbilityContext, _ Overrides) {
	*events = append(*events, NewActionEvent(a, EventParams{Context: ctx}, Overrides{}))
}

func (a *handlerAction) EventHandler(event *Event) {
	if a.fn != nil {
		a.fn(event)
	}
}

func (a *handlerAction) CheckEventCondition(*Event) bool { return true }

// ResolveAbility queues an ability resolution.
func (g *Game) ResolveAbility(ctx *AbilityContext) *AbilityResolver {
	r := NewAbilityResolver(g, ctx)
	g.QueueStep(r)
	return r
}

// ResolveGameAction builds the events of action against ctx and opens them
// in a window. Building may prompt, so the window opens in a later step.
func (g *Game) ResolveGameAction(action Action, ctx *AbilityContext, o Overrides) {
	g.resolveActions(ctx, []Action{action}, o, false, nil)
}

func (g *Game) resolveActions(ctx *AbilityContext, actions []Action, o Overrides, then bool, collect func([]*Event)) {
	var events []*Event
	g.QueueSimpleStep("gather events", func() {
		for _, a := range actions {
			a.AddEventsToArray(&events, ctx, o)
		}
	})
	g.QueueSimpleStep("open event window", func() {
		if collect != nil {
			collect(events)
		}
		if len(events) == 0 {
			return
		}
		if then {
			g.OpenThenEventWindow(events...)
		} else {
			g.OpenEventWindow(events...)
		}
	})
}
