package synonym

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []string{"채소", "곡류", "육류", "해산물", "양념", "유제품"}, d.Categories())
	assert.Greater(t, d.Len(), 20)

	vegetables := d.Entries("채소")
	require.NotEmpty(t, vegetables)
	assert.Equal(t, "피망", vegetables[0].Standard)
	assert.Equal(t, "채소", vegetables[0].Category)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("[]"))
	assert.ErrorIs(t, err, ErrEmptyDictionary)

	_, err = Parse([]byte("- category: 채소\n  entries:\n    - synonyms: [파]\n"))
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = Parse([]byte("- entries: []\n"))
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = Parse([]byte("not: [valid"))
	assert.Error(t, err)
}

func TestParse_FirstOccurrenceWins(t *testing.T) {
	d, err := Parse([]byte(`
- category: a
  entries:
    - standard: Cheese
      synonyms: [Mozzarella]
- category: b
  entries:
    - standard: Mozzarella
      synonyms: [fior di latte]
`))
	require.NoError(t, err)
	assert.Equal(t, 0, d.reverse["mozzarella"])
	assert.Equal(t, 1, d.reverse["fior di latte"])
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- category: 양념\n  entries:\n    - standard: 소금\n      synonyms: [천일염, 꽃소금]\n"), 0o600))

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"양념"}, d.Categories())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	d, err = Load(strings.NewReader("- category: x\n  entries:\n    - standard: y\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
}
