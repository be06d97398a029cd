package game

// Element is one of the five ring elements.
type Element string

const (
	ElementAir   Element = "air"
	ElementEarth Element = "earth"
	ElementFire  Element = "fire"
	ElementVoid  Element = "void"
	ElementWater Element = "water"
)

// Elements lists the elements in the order rings are created.
var Elements = []Element{ElementAir, ElementEarth, ElementFire, ElementVoid, ElementWater}

// ConflictType is the type of a conflict (and of a ring).
type ConflictType string

const (
	ConflictMilitary  ConflictType = "military"
	ConflictPolitical ConflictType = "political"
)

// Other returns the opposite conflict type.
func (t ConflictType) Other() ConflictType {
	if t == ConflictPolitical {
		return ConflictMilitary
	}
	return ConflictPolitical
}

// Favor is the imperial favor a player holds.
type Favor string

const (
	FavorNone      Favor = ""
	FavorMilitary  Favor = "military"
	FavorPolitical Favor = "political"
	FavorBoth      Favor = "both"
)

// Location is a card list a card can be in.
type Location string

const (
	LocationAny                Location = "any"
	LocationProvinces          Location = "province"
	LocationHand               Location = "hand"
	LocationPlayArea           Location = "play area"
	LocationConflictDeck       Location = "conflict deck"
	LocationDynastyDeck        Location = "dynasty deck"
	LocationConflictDiscard    Location = "conflict discard pile"
	LocationDynastyDiscard     Location = "dynasty discard pile"
	LocationProvinceOne        Location = "province 1"
	LocationProvinceTwo        Location = "province 2"
	LocationProvinceThree      Location = "province 3"
	LocationProvinceFour       Location = "province 4"
	LocationStrongholdProvince Location = "stronghold province"
	LocationRemovedFromGame    Location = "removed from game"
)

// ProvinceLocations lists every province slot.
var ProvinceLocations = []Location{
	LocationProvinceOne,
	LocationProvinceTwo,
	LocationProvinceThree,
	LocationProvinceFour,
	LocationStrongholdProvince,
}

// IsProvince reports whether loc is a province slot.
func (l Location) IsProvince() bool {
	for _, p := range ProvinceLocations {
		if p == l {
			return true
		}
	}
	return false
}

// allLocations is the fixed iteration order for searching a player's cards.
var allLocations = []Location{
	LocationPlayArea,
	LocationProvinceOne,
	LocationProvinceTwo,
	LocationProvinceThree,
	LocationProvinceFour,
	LocationStrongholdProvince,
	LocationHand,
	LocationConflictDeck,
	LocationDynastyDeck,
	LocationConflictDiscard,
	LocationDynastyDiscard,
	LocationRemovedFromGame,
}

// CardType is the printed type of a card.
type CardType string

const (
	CardTypeCharacter  CardType = "character"
	CardTypeAttachment CardType = "attachment"
	CardTypeEvent      CardType = "event"
	CardTypeHolding    CardType = "holding"
	CardTypeProvince   CardType = "province"
	CardTypeStronghold CardType = "stronghold"
)

// Stage tells whether an ability is still paying costs or resolving effects.
type Stage string

const (
	StagePreTarget Stage = "pretarget"
	StageCost      Stage = "cost"
	StageEffect    Stage = "effect"
)

// PlayType is derived from where a card is being played from.
type PlayType string

const (
	PlayTypeNone         PlayType = ""
	PlayTypeFromHand     PlayType = "playFromHand"
	PlayTypeFromProvince PlayType = "playFromProvince"
	PlayTypeOther        PlayType = "other"
)

// DuelType selects the statistic a duel compares.
type DuelType string

const (
	DuelMilitary  DuelType = "military"
	DuelPolitical DuelType = "political"
	DuelGlory     DuelType = "glory"
)

// Players is a relative player selector used by targets and effects.
type Players string

const (
	PlayersSelf     Players = "self"
	PlayersOpponent Players = "opponent"
	PlayersAny      Players = "any"
)

// Duration controls when a lasting effect expires.
type Duration string

const (
	DurationPersistent         Duration = "persistent"
	DurationUntilEndOfConflict Duration = "untilEndOfConflict"
	DurationUntilEndOfPhase    Duration = "untilEndOfPhase"
	DurationUntilEndOfRound    Duration = "untilEndOfRound"
	DurationCustom             Duration = "custom"
)

// Restriction types checked through CheckRestrictions. Game action names are
// also used as restriction types.
const (
	RestrictionClaimRings                 = "claimRings"
	RestrictionTakeFateFromRings          = "takeFateFromRings"
	RestrictionContributeSkillToConflict  = "contributeSkillToConflictResolution"
	RestrictionReceiveDishonorToken       = "receiveDishonorToken"
	RestrictionReceiveHonorToken          = "receiveHonorToken"
	RestrictionTriggerAbilities           = "triggerAbilities"
	RestrictionDeclareConflict            = "declareConflict"
	RestrictionSpendFate                  = "spendFate"
	RestrictionLoseHonor                  = "loseHonor"
	RestrictionGainHonor                  = "gainHonor"
	RestrictionTakeHonor                  = "takeHonor"
	RestrictionCannotBeDeclaredAsAttacker = "declareAsAttacker"
	RestrictionCannotBeDeclaredAsDefender = "declareAsDefender"
	RestrictionSendHome                   = "sendHome"
	RestrictionMoveToConflict             = "moveToConflict"
	RestrictionPlaceFateWhenPlaying       = "placeFateWhenPlayingCharacter"
	RestrictionPlaceFateFromProvince      = "placeFateWhenPlayingCharacterFromProvince"
)

// Honor thresholds checked by CheckGameState.
const (
	HonorVictory = 25
	HonorDefeat  = 0
)
