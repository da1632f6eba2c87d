package ingestion

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/recipesearch/core"
)

// RecipeRecord is one recipe as it appears in a seed file.
type RecipeRecord struct {
	ID          uint64   `yaml:"id"`
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Method      string   `yaml:"cooking_method"`
	Ingredients string   `yaml:"ingredients"`
	Tags        []string `yaml:"hashtag"`
	Image       string   `yaml:"image"`
	Thumbnail   string   `yaml:"thumbnail"`
}

// IngredientRecord is one ingredient as it appears in a seed file.
type IngredientRecord struct {
	ID       uint64   `yaml:"id"`
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Aliases  []string `yaml:"aliases"`
}

// Seed is the decoded content of a seed file.
type Seed struct {
	Recipes     []RecipeRecord     `yaml:"recipes"`
	Ingredients []IngredientRecord `yaml:"ingredients"`
}

// LoadSeedFile reads and decodes the seed file at path.
func LoadSeedFile(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed decodes a seed document from r.
func LoadSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		if err == io.EOF {
			return &seed, nil
		}
		return nil, fmt.Errorf("decoding seed: %w", err)
	}
	return &seed, nil
}

// Entities converts the seed records to entities, recipes first.
// Records without a name are rejected.
func (s *Seed) Entities() ([]*core.Entity, error) {
	entities := make([]*core.Entity, 0, len(s.Recipes)+len(s.Ingredients))
	for i, r := range s.Recipes {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: recipe %d has no name", ErrInvalidRecord, i)
		}
		entities = append(entities, &core.Entity{
			Id:              core.ID(r.ID),
			Kind:            core.EntityKindRecipe,
			Name:            name,
			Category:        r.Category,
			Method:          r.Method,
			IngredientsText: r.Ingredients,
			Tags:            r.Tags,
			Image:           r.Image,
			Thumbnail:       r.Thumbnail,
		})
	}
	for i, r := range s.Ingredients {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: ingredient %d has no name", ErrInvalidRecord, i)
		}
		entities = append(entities, &core.Entity{
			Id:       core.ID(r.ID),
			Kind:     core.EntityKindIngredient,
			Name:     name,
			Category: r.Category,
			Aliases:  r.Aliases,
		})
	}
	return entities, nil
}
