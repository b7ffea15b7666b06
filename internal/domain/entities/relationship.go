package entities

import "time"

// RelationType defines the kind of relationship between two characters.
type RelationType string

const (
	RelationParent       RelationType = "parent"
	RelationChild        RelationType = "child"
	RelationSibling      RelationType = "sibling"
	RelationSpouse       RelationType = "spouse"
	RelationFriend       RelationType = "friend"
	RelationRival        RelationType = "rival"
	RelationEnemy        RelationType = "enemy"
	RelationAlly         RelationType = "ally"
	RelationMentor       RelationType = "mentor"
	RelationStudent      RelationType = "student"
	RelationColleague    RelationType = "colleague"
	RelationAcquaintance RelationType = "acquaintance"

	// RelationCustom and RelationOther are sentinels for a user-supplied
	// free-text type carried in CustomType.
	RelationCustom RelationType = "custom"
	RelationOther  RelationType = "other"
)

// Bounds on the relationship record's qualifier fields.
const (
	CustomTypeMinLen = 2
	CustomTypeMaxLen = 50

	MinStrength     = 0
	MaxStrength     = 100
	DefaultStrength = 50
)

// bidirectionalTypes is the closed set of types whose meaning is symmetric
// between the two characters. Membership is the sole signal for defaulting
// the bidirectional flag; custom/other are deliberately absent so the flag
// stays under user control for them.
var bidirectionalTypes = map[RelationType]bool{
	RelationSibling:      true,
	RelationSpouse:       true,
	RelationFriend:       true,
	RelationRival:        true,
	RelationEnemy:        true,
	RelationAlly:         true,
	RelationColleague:    true,
	RelationAcquaintance: true,
}

// IsBidirectionalType reports whether t belongs to the bidirectional type set.
func IsBidirectionalType(t RelationType) bool {
	return bidirectionalTypes[t]
}

// IsCustomType reports whether t is one of the free-text sentinels.
func IsCustomType(t RelationType) bool {
	return t == RelationCustom || t == RelationOther
}

// Relationship represents a directed link between two characters on a
// timeline. Direction matters: (Character1ID, Character2ID) and the reversed
// pair are distinct records even when the relationship is bidirectional.
type Relationship struct {
	ID           string       `json:"id,omitempty"`
	Character1ID string       `json:"character_1_id"`
	Character2ID string       `json:"character_2_id"`
	Type         RelationType `json:"relationship_type"`

	// CustomType holds the free-text type when Type is custom/other.
	// Empty means unset; it is never carried for enumerated types.
	CustomType string `json:"custom_relationship_type,omitempty"`

	Degree        string `json:"relationship_degree,omitempty"`
	Modifier      string `json:"relationship_modifier,omitempty"`
	Strength      int    `json:"relationship_strength"`
	Bidirectional bool   `json:"is_bidirectional"`
	Notes         string `json:"notes,omitempty"`
	TimelineID    string `json:"timeline_id"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ClampStrength forces a strength value into the [MinStrength, MaxStrength]
// domain.
func ClampStrength(s int) int {
	if s < MinStrength {
		return MinStrength
	}
	if s > MaxStrength {
		return MaxStrength
	}
	return s
}
