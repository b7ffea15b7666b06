package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBidirectionalType(t *testing.T) {
	bidirectional := []RelationType{
		RelationSibling, RelationSpouse, RelationFriend, RelationRival,
		RelationEnemy, RelationAlly, RelationColleague, RelationAcquaintance,
	}
	for _, rt := range bidirectional {
		assert.True(t, IsBidirectionalType(rt), "%s", rt)
	}

	directed := []RelationType{
		RelationParent, RelationChild, RelationMentor, RelationStudent,
		RelationCustom, RelationOther, RelationType(""), RelationType("nemesis"),
	}
	for _, rt := range directed {
		assert.False(t, IsBidirectionalType(rt), "%s", rt)
	}
}

func TestIsCustomType(t *testing.T) {
	assert.True(t, IsCustomType(RelationCustom))
	assert.True(t, IsCustomType(RelationOther))
	assert.False(t, IsCustomType(RelationSibling))
	assert.False(t, IsCustomType(RelationType("")))
}

func TestClampStrength(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"below minimum", -10, MinStrength},
		{"minimum", 0, 0},
		{"default", DefaultStrength, 50},
		{"maximum", 100, 100},
		{"above maximum", 250, MaxStrength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampStrength(tt.in))
		})
	}
}
