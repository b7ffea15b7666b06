// Package services holds the editor session logic: the relationship
// classification rules and the two editor state machines.
package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/threadline-app/threadline/internal/domain/entities"
)

// Validation failures for a candidate relationship record. Callers branch
// with errors.Is and surface the message as a blocking alert.
var (
	ErrMissingType       = errors.New("relationship type is required")
	ErrMissingCustomType = errors.New("custom relationship type is required")
	ErrCustomTypeLength  = fmt.Errorf("custom relationship type must be %d-%d characters",
		entities.CustomTypeMinLen, entities.CustomTypeMaxLen)
)

// Classifier encodes the relationship decision rules: default directionality
// for a chosen type, structural validation of a candidate record, and
// duplicate detection against a snapshot of existing records.
//
// It is stateless; the editor session owns the snapshot and the form.
type Classifier struct{}

// ClassifyDirectionality reports whether the given type defaults to
// bidirectional, i.e. whether it belongs to the bidirectional type set.
// Unknown and custom types classify as false.
func (Classifier) ClassifyDirectionality(t entities.RelationType) bool {
	return entities.IsBidirectionalType(t)
}

// ApplyDirectionality returns the bidirectional flag value the form should
// show after selecting t, given the flag's current value.
//
// Types in the bidirectional set force the flag on; enumerated directed
// types force it off. For custom/other and for an empty selection the
// current (user-controlled) value is left untouched: classification must not
// override explicit user choice for types it cannot reason about.
func (c Classifier) ApplyDirectionality(t entities.RelationType, current bool) bool {
	switch {
	case t == "":
		return current
	case c.ClassifyDirectionality(t):
		return true
	case entities.IsCustomType(t):
		return current
	default:
		return false
	}
}

// ValidateCandidate checks a candidate record's structural invariants. It
// never consults existing records.
func (Classifier) ValidateCandidate(rel *entities.Relationship) error {
	if rel.Type == "" {
		return ErrMissingType
	}
	if entities.IsCustomType(rel.Type) {
		custom := strings.TrimSpace(rel.CustomType)
		if custom == "" {
			return ErrMissingCustomType
		}
		// Length bounds count characters, not bytes.
		if n := utf8.RuneCountInString(custom); n < entities.CustomTypeMinLen || n > entities.CustomTypeMaxLen {
			return ErrCustomTypeLength
		}
	}
	return nil
}

// FindDuplicates returns every record in existing that duplicates the
// candidate: same type, same custom type (empty equals empty), and the exact
// directional character pair.
//
// The reversed pair is never a duplicate, even for bidirectional types.
// That narrow definition is product behavior; do not symmetrize it.
func (Classifier) FindDuplicates(candidate *entities.Relationship, existing []entities.Relationship) []entities.Relationship {
	var duplicates []entities.Relationship
	for i := range existing {
		e := &existing[i]
		if e.Type != candidate.Type {
			continue
		}
		if e.CustomType != candidate.CustomType {
			continue
		}
		if e.Character1ID != candidate.Character1ID || e.Character2ID != candidate.Character2ID {
			continue
		}
		duplicates = append(duplicates, *e)
	}
	return duplicates
}
