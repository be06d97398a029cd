// Package actions is the vocabulary of game actions abilities are written
// in. Each constructor takes its properties either fixed up front (Static) or
// computed from the resolving context (Derived).
package actions

import "github.com/jigoku/jigoku-server-go/internal/game"

// Properties holds an action's per-invocation properties: a fixed value or
// a function of the ability context.
type Properties[P any] struct {
	value   P
	derived func(ctx *game.AbilityContext) P
}

// Static wraps fixed properties.
func Static[P any](p P) Properties[P] {
	return Properties[P]{value: p}
}

// Derived wraps properties computed when the action is evaluated.
func Derived[P any](fn func(ctx *game.AbilityContext) P) Properties[P] {
	return Properties[P]{derived: fn}
}

// Evaluate returns the properties for ctx. It never mutates game state.
func (p Properties[P]) Evaluate(ctx *game.AbilityContext) P {
	if p.derived != nil {
		return p.derived(ctx)
	}
	return p.value
}

// IsDerived reports whether the properties depend on the context.
func (p Properties[P]) IsDerived() bool { return p.derived != nil }
