package classifier

import "testing"

func TestParsePredictions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{
			name:    "plain json",
			content: `[{"category":"science","score":0.9},{"category":"music","score":0.4}]`,
			want:    []string{"science", "music"},
		},
		{
			name: "fenced json re-ranked by score",
			content: "```json\n" +
				`[{"category":"music","score":0.2},{"category":"science","score":0.8}]` +
				"\n```",
			want: []string{"science", "music"},
		},
		{
			name:    "unknown categories dropped",
			content: `[{"category":"science","score":0.9},{"category":"astrology","score":0.8}]`,
			want:    []string{"science"},
		},
		{
			name:    "casing and whitespace normalized",
			content: `[{"category":" Science ","score":0.9}]`,
			want:    []string{"science"},
		},
		{
			name:    "ties keep model order",
			content: `[{"category":"music","score":0.5},{"category":"art","score":0.5}]`,
			want:    []string{"music", "art"},
		},
		{
			name:    "not json",
			content: "I think these are science groups",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePredictions(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d predictions, want %d", len(got), len(tt.want))
			}
			for i, category := range tt.want {
				if got[i].Category != category {
					t.Fatalf("prediction %d = %q, want %q", i, got[i].Category, category)
				}
			}
		})
	}
}
