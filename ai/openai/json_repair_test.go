package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid unchanged", `{"1": 85, "2": 72}`, `{"1": 85, "2": 72}`},
		{"bare numeric keys", `{1: 85, 2: 72}`, `{"1": 85, "2": 72}`},
		{"missing opening quote", `{1": 85, 2": 72}`, `{"1": 85, "2": 72}`},
		{"mixed", "{\n  \"1\": 85,\n  2: 40\n}", "{\n  \"1\": 85,\n  \"2\": 40\n}"},
		{"array values untouched", `{"1": [85, 72]}`, `{"1": [85, 72]}`},
		{"bare word key", `{score: 10}`, `{"score": 10}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.input))
		})
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"1": 90}`, stripFences("```json\n{\"1\": 90}\n```"))
	assert.Equal(t, `{"1": 90}`, stripFences("```{\"1\": 90}```"))
	assert.Equal(t, `{"1": 90}`, stripFences(`  {"1": 90} `))
}

func TestScrubString(t *testing.T) {
	assert.Equal(t, "김치 찌개", scrubString(" \"김치\n찌개\" "))
	assert.Equal(t, "라면", scrubString("{라면}"))
}
