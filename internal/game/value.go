package game

import (
	"strconv"
	"strings"
)

// ValueKind tags the shape held by a Value.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueCard
	ValueCards
	ValueRing
	ValueRings
	ValuePlayer
	ValueAmount
	ValueFlag
	ValueText
	ValueElement
)

func (k ValueKind) String() string {
	switch k {
	case ValueCard:
		return "card"
	case ValueCards:
		return "cards"
	case ValueRing:
		return "ring"
	case ValueRings:
		return "rings"
	case ValuePlayer:
		return "player"
	case ValueAmount:
		return "amount"
	case ValueFlag:
		return "flag"
	case ValueText:
		return "text"
	case ValueElement:
		return "element"
	default:
		return "none"
	}
}

// Value is the closed set of things an ability can record while resolving:
// chosen cards, rings, players, numbers, flags, menu choices and elements.
// The zero Value is empty.
type Value struct {
	kind    ValueKind
	cards   []*Card
	rings   []*Ring
	player  *Player
	amount  int
	flag    bool
	text    string
	element Element
}

// CardValue wraps a single card. A nil card yields the empty value.
func CardValue(card *Card) Value {
	if card == nil {
		return Value{}
	}
	return Value{kind: ValueCard, cards: []*Card{card}}
}

// CardsValue wraps a list of cards; nil entries are dropped.
func CardsValue(cards ...*Card) Value {
	kept := make([]*Card, 0, len(cards))
	for _, c := range cards {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return Value{kind: ValueCards, cards: kept}
}

// RingValue wraps a single ring.
func RingValue(ring *Ring) Value {
	if ring == nil {
		return Value{}
	}
	return Value{kind: ValueRing, rings: []*Ring{ring}}
}

// RingsValue wraps a list of rings; nil entries are dropped.
func RingsValue(rings ...*Ring) Value {
	kept := make([]*Ring, 0, len(rings))
	for _, r := range rings {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return Value{kind: ValueRings, rings: kept}
}

// PlayerValue wraps a player.
func PlayerValue(player *Player) Value {
	if player == nil {
		return Value{}
	}
	return Value{kind: ValuePlayer, player: player}
}

// AmountValue wraps a number.
func AmountValue(n int) Value {
	return Value{kind: ValueAmount, amount: n}
}

// FlagValue wraps a boolean.
func FlagValue(b bool) Value {
	return Value{kind: ValueFlag, flag: b}
}

// TextValue wraps a string such as a menu choice.
func TextValue(s string) Value {
	return Value{kind: ValueText, text: s}
}

// ElementValue wraps a ring element.
func ElementValue(e Element) Value {
	return Value{kind: ValueElement, element: e}
}

// Kind returns the shape of the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsEmpty reports whether the value holds nothing.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case ValueNone:
		return true
	case ValueCard, ValueCards:
		return len(v.cards) == 0
	case ValueRing, ValueRings:
		return len(v.rings) == 0
	default:
		return false
	}
}

// Card returns the first card held, or nil.
func (v Value) Card() *Card {
	if len(v.cards) == 0 {
		return nil
	}
	return v.cards[0]
}

// Cards returns a copy of the cards held.
func (v Value) Cards() []*Card {
	return append([]*Card(nil), v.cards...)
}

// Ring returns the first ring held, or nil.
func (v Value) Ring() *Ring {
	if len(v.rings) == 0 {
		return nil
	}
	return v.rings[0]
}

// Rings returns a copy of the rings held.
func (v Value) Rings() []*Ring {
	return append([]*Ring(nil), v.rings...)
}

// Player returns the player held, or nil.
func (v Value) Player() *Player { return v.player }

// Amount returns the number held (zero for other kinds).
func (v Value) Amount() int { return v.amount }

// Flag returns the boolean held.
func (v Value) Flag() bool { return v.flag }

// Text returns the string held.
func (v Value) Text() string { return v.text }

// Element returns the element held. Ring values report their ring's element.
func (v Value) Element() Element {
	if v.kind == ValueElement {
		return v.element
	}
	if r := v.Ring(); r != nil {
		return r.Element
	}
	return ""
}

// Equal compares two values by identity of the entities they refer to.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind || len(v.cards) != len(other.cards) || len(v.rings) != len(other.rings) {
		return false
	}
	for i := range v.cards {
		if v.cards[i] != other.cards[i] {
			return false
		}
	}
	for i := range v.rings {
		if v.rings[i] != other.rings[i] {
			return false
		}
	}
	return v.player == other.player && v.amount == other.amount && v.flag == other.flag &&
		v.text == other.text && v.element == other.element
}

// IDs returns the identifiers of the entities held, for event records.
func (v Value) IDs() []string {
	var ids []string
	for _, c := range v.cards {
		ids = append(ids, c.ID)
	}
	for _, r := range v.rings {
		ids = append(ids, string(r.Element))
	}
	if v.player != nil {
		ids = append(ids, v.player.ID)
	}
	return ids
}

func (v Value) String() string {
	switch v.kind {
	case ValueCard, ValueCards:
		names := make([]string, 0, len(v.cards))
		for _, c := range v.cards {
			names = append(names, c.Name())
		}
		return strings.Join(names, ", ")
	case ValueRing, ValueRings:
		names := make([]string, 0, len(v.rings))
		for _, r := range v.rings {
			names = append(names, r.Name())
		}
		return strings.Join(names, ", ")
	case ValuePlayer:
		return v.player.Name
	case ValueAmount:
		return strconv.Itoa(v.amount)
	case ValueFlag:
		return strconv.FormatBool(v.flag)
	case ValueText:
		return v.text
	case ValueElement:
		return string(v.element)
	default:
		return ""
	}
}

// cloneValues shallow-copies a value map; the entities referenced are shared.
func cloneValues(m map[string]Value) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
