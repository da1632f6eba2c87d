package korean

import "testing"

func TestEditSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "라면", "라면", 1.0},
		{"disjoint equal length", "라면", "김치", 0.0},
		{"one substitution", "김치찌개", "김치지개", 0.75},
		{"empty", "", "라면", 0.0},
		{"length gap too large", "떡", "떡볶이전골", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EditSimilarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("EditSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEditSimilarity_Bounds(t *testing.T) {
	pairs := [][2]string{{"된장찌개", "된장국"}, {"pasta", "pizza"}, {"떡볶이", "떡국"}}
	for _, p := range pairs {
		got := EditSimilarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("EditSimilarity(%q, %q) = %v out of [0,1]", p[0], p[1], got)
		}
	}
}
