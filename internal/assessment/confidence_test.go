package assessment

import "testing"

func TestCalculateConfidence(t *testing.T) {
	tests := []struct {
		name   string
		parsed map[string]any
		want   int
	}{
		{
			name:   "empty object",
			parsed: map[string]any{},
			want:   0,
		},
		{
			name: "all empty leaves",
			parsed: map[string]any{
				"a": "",
				"b": false,
				"c": nil,
				"d": []any{},
			},
			want: 0,
		},
		{
			name: "all filled leaves",
			parsed: map[string]any{
				"a": "value",
				"b": true,
				"c": []any{"item"},
			},
			want: 100,
		},
		{
			name: "half filled",
			parsed: map[string]any{
				"a": "value",
				"b": "",
			},
			want: 50,
		},
		{
			name: "nested sections recurse",
			parsed: map[string]any{
				"section1": map[string]any{
					"a": "value",
					"b": "",
				},
				"section2": map[string]any{
					"c": "value",
					"d": "value",
				},
			},
			want: 75,
		},
		{
			name: "empty list counts as not filled",
			parsed: map[string]any{
				"a": []any{},
				"b": "value",
			},
			want: 50,
		},
		{
			name: "rounding",
			parsed: map[string]any{
				"a": "value",
				"b": "",
				"c": "",
			},
			want: 33,
		},
		{
			name: "list counts as single leaf",
			parsed: map[string]any{
				"a": []any{"one", "two", "three"},
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateConfidence(tt.parsed)
			if got != tt.want {
				t.Errorf("CalculateConfidence = %d, want %d", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("CalculateConfidence = %d, out of [0,100]", got)
			}
		})
	}
}
