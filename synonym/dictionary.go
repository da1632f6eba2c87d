// Package synonym maps ingredient names to a standard name and expands a
// term into every known alternate name.
package synonym

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/recipesearch/text"
)

//go:embed dictionary.yaml
var defaultDictionary []byte

// Entry is one standard name with its synonyms.
type Entry struct {
	Category string   `yaml:"-"`
	Standard string   `yaml:"standard"`
	Synonyms []string `yaml:"synonyms"`
}

type category struct {
	Name    string   `yaml:"category"`
	Entries []*Entry `yaml:"entries"`
}

type nameRef struct {
	folded string
	entry  int
}

// Dictionary is an immutable synonym table. It is built once and is safe
// for concurrent use.
type Dictionary struct {
	entries    []*Entry
	categories []string
	names      []nameRef      // every standard and synonym in dictionary order
	reverse    map[string]int // folded name -> entry index, first occurrence wins
}

// Default returns the dictionary compiled into the binary.
func Default() (*Dictionary, error) {
	return Parse(defaultDictionary)
}

// LoadFile reads a YAML dictionary from path.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load reads a YAML dictionary from r.
func Load(r io.Reader) (*Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a dictionary from YAML: a list of categories, each holding an
// ordered list of {standard, synonyms} entries.
func Parse(data []byte) (*Dictionary, error) {
	var cats []category
	if err := yaml.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("parsing synonym dictionary: %w", err)
	}

	d := &Dictionary{reverse: make(map[string]int)}
	for _, c := range cats {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: missing category", ErrInvalidEntry)
		}
		d.categories = append(d.categories, c.Name)
		for _, e := range c.Entries {
			if e == nil || e.Standard == "" {
				return nil, fmt.Errorf("%w: entry without standard name in %q", ErrInvalidEntry, c.Name)
			}
			e.Category = c.Name
			idx := len(d.entries)
			d.entries = append(d.entries, e)
			d.addName(e.Standard, idx)
			for _, s := range e.Synonyms {
				d.addName(s, idx)
			}
		}
	}
	if len(d.entries) == 0 {
		return nil, ErrEmptyDictionary
	}
	return d, nil
}

func (d *Dictionary) addName(name string, entry int) {
	folded := text.Fold(name)
	if folded == "" {
		return
	}
	if _, ok := d.reverse[folded]; ok {
		return
	}
	d.reverse[folded] = entry
	d.names = append(d.names, nameRef{folded: folded, entry: entry})
}

// Categories returns category names in dictionary order.
func (d *Dictionary) Categories() []string {
	out := make([]string, len(d.categories))
	copy(out, d.categories)
	return out
}

// Entries returns the entries of one category in dictionary order.
func (d *Dictionary) Entries(category string) []Entry {
	var out []Entry
	for _, e := range d.entries {
		if e.Category == category {
			out = append(out, *e)
		}
	}
	return out
}

// Len returns the number of standard names.
func (d *Dictionary) Len() int {
	return len(d.entries)
}
