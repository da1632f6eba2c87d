package badger

import (
	"encoding/binary"

	"github.com/poiesic/recipesearch/core"
)

// Key prefixes for different entity kinds
const (
	recipePrefix     = "recipe:"
	ingredientPrefix = "ingred:"
)

// makeEntityPrefix returns the key prefix of one entity kind.
func makeEntityPrefix(kind core.EntityKind) []byte {
	switch kind {
	case core.EntityKindRecipe:
		return []byte(recipePrefix)
	case core.EntityKindIngredient:
		return []byte(ingredientPrefix)
	default:
		return []byte("unknown:")
	}
}

// makeEntityKey generates a key for an entity by kind and ID.
// Format: prefix:id with the ID in BigEndian order so keys sort by ID.
func makeEntityKey(kind core.EntityKind, id core.ID) []byte {
	prefix := makeEntityPrefix(kind)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
