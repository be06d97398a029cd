package game

// EffectSource is whatever originates an ability or an effect: a card, a ring
// or the game framework itself.
type EffectSource interface {
	SourceID() string
	SourceName() string
}

// EffectTarget is anything lasting effects can apply to.
type EffectTarget interface {
	EntityID() string
}

// frameworkSource is the neutral source used for rules-driven actions.
type frameworkSource struct {
	id string
}

func (f frameworkSource) SourceID() string   { return f.id }
func (f frameworkSource) SourceName() string { return "Framework effect" }
