package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for indexed entities.
// It is either assigned by the upstream catalog or derived from content.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EntityKind identifies which index an entity lives in.
type EntityKind int

const (
	// EntityKindRecipe is a recipe document.
	EntityKindRecipe EntityKind = iota + 1
	// EntityKindIngredient is an ingredient document.
	EntityKindIngredient
)

func (k EntityKind) String() string {
	switch k {
	case EntityKindRecipe:
		return "recipe"
	case EntityKindIngredient:
		return "ingredient"
	default:
		return "unknown"
	}
}

// Scope restricts a search to one or both entity kinds.
type Scope string

const (
	ScopeAll        Scope = "all"
	ScopeRecipe     Scope = "recipe"
	ScopeIngredient Scope = "ingredient"
)

// Includes reports whether the scope covers the given kind.
func (s Scope) Includes(kind EntityKind) bool {
	switch s {
	case ScopeAll:
		return true
	case ScopeRecipe:
		return kind == EntityKindRecipe
	case ScopeIngredient:
		return kind == EntityKindIngredient
	default:
		return false
	}
}

// SourceKind tags which relevance signal produced a candidate.
type SourceKind int

const (
	// SourceLexical is keyword/inverted-index search.
	SourceLexical SourceKind = iota + 1
	// SourceVector is embedding similarity search.
	SourceVector
	// SourceSynonym is lexical search over synonym expansions.
	SourceSynonym
	// SourceAI is the LLM relevance judge.
	SourceAI
)

func (s SourceKind) String() string {
	switch s {
	case SourceLexical:
		return "text"
	case SourceVector:
		return "vector"
	case SourceSynonym:
		return "synonym"
	case SourceAI:
		return "ai"
	default:
		return "unknown"
	}
}

// Entity is a snapshot of an indexed recipe or ingredient.
type Entity struct {
	Id              ID         `json:"id"`
	Kind            EntityKind `json:"kind"`
	Name            string     `json:"name"`
	Category        string     `json:"category,omitempty"`
	Method          string     `json:"cooking_method,omitempty"` // Cooking method (recipes only)
	IngredientsText string     `json:"ingredients,omitempty"`    // Raw ingredient list as stored upstream (recipes only)
	Aliases         []string   `json:"aliases,omitempty"`        // Alternate names (ingredients only)
	Tags            []string   `json:"hashtag,omitempty"`
	Image           string     `json:"image,omitempty"`
	Thumbnail       string     `json:"thumbnail,omitempty"`
	Vector          []float32  `json:"vector,omitempty"` // Embedding of the entity text, unit length
	InsertedAt      time.Time  `json:"inserted_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EmbeddingText returns the text used to embed the entity.
func (e *Entity) EmbeddingText() string {
	parts := []string{e.Name}
	if e.Category != "" {
		parts = append(parts, e.Category)
	}
	if e.IngredientsText != "" {
		parts = append(parts, e.IngredientsText)
	}
	if len(e.Aliases) > 0 {
		parts = append(parts, strings.Join(e.Aliases, " "))
	}
	return strings.Join(parts, " ")
}

// CorrectionMethod names how a query correction was produced.
type CorrectionMethod string

const (
	CorrectionJamo  CorrectionMethod = "jamo-recomposition"
	CorrectionFuzzy CorrectionMethod = "fuzzy-index-match"
)

// Correction records a rewrite applied to the query text.
type Correction struct {
	Original  string
	Corrected string
	Method    CorrectionMethod
}

// Query is a caller's search request.
type Query struct {
	Text  string `validate:"required"`
	Scope Scope  `validate:"required,oneof=all recipe ingredient"`
	Limit int    `validate:"gte=1"`
}

// CorrectedQuery is a query after Korean repair. It is never mutated after creation.
type CorrectedQuery struct {
	Query
	Correction  *Correction
	Suggestions []string
}

// Effective returns the text retrieval should use.
func (q CorrectedQuery) Effective() string {
	if q.Correction != nil {
		return q.Correction.Corrected
	}
	return q.Text
}

// CandidateResult is one entity returned by one relevance signal.
type CandidateResult struct {
	Entity   *Entity
	RawScore float64
	Source   SourceKind
	Reason   string
	Term     string // Expansion term that produced a synonym candidate
}

// Candidates groups the per-source candidate sets for one entity kind.
type Candidates struct {
	Lexical []*CandidateResult
	Vector  []*CandidateResult
	Synonym []*CandidateResult
}

// Count returns the total number of candidates across all sources.
func (c *Candidates) Count() int {
	return len(c.Lexical) + len(c.Vector) + len(c.Synonym)
}

// RecipeIngredient is one parsed entry of a recipe's ingredient list.
type RecipeIngredient struct {
	Position int
	Name     string
	Main     bool
}

// FusedResult is the single cross-source ranking record for one entity.
type FusedResult struct {
	Entity      *Entity
	Score       float64
	Sources     []SourceKind
	Reason      string
	Ingredients []RecipeIngredient
}

// HasSource reports whether the given signal contributed to the result.
func (r *FusedResult) HasSource(source SourceKind) bool {
	for _, s := range r.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// Response is the result of one search.
type Response struct {
	RequestID      string
	Recipes        []*FusedResult
	Ingredients    []*FusedResult
	TotalMatches   int
	ProcessingTime time.Duration
	Correction     *Correction
	Suggestions    []string
}

// ProcessingTimeMs returns the processing time in milliseconds.
func (r *Response) ProcessingTimeMs() int64 {
	return r.ProcessingTime.Milliseconds()
}
