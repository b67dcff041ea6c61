package bot

import "testing"

func TestDecodeIntent(t *testing.T) {
	const passphrase = "open sesame"

	tests := []struct {
		name    string
		text    string
		payload string
		want    Intent
	}{
		{
			name:    "start analysis button",
			payload: `{"button":"start_analysis"}`,
			want:    Intent{Kind: IntentStartAnalysis},
		},
		{
			name:    "show recommendation with page",
			payload: `{"button":"show_recommendation_3"}`,
			want:    Intent{Kind: IntentShowRecommendation, Page: 3},
		},
		{
			name:    "show recommendation defaults to page 1",
			payload: `{"button":"show_recommendation"}`,
			want:    Intent{Kind: IntentShowRecommendation, Page: 1},
		},
		{
			name: "admin passphrase normalized",
			text: "Open, Sesame!",
			want: Intent{Kind: IntentAdminEnter},
		},
		{
			name:    "dataset filter without decision",
			payload: `{"button":"dataset_filter"}`,
			want:    Intent{Kind: IntentDatasetFilter},
		},
		{
			name:    "dataset filter decision",
			payload: `{"button":"dataset_filter#105#2"}`,
			want:    Intent{Kind: IntentDatasetFilter, Decision: true, GroupID: 105, CategoryIndex: 2},
		},
		{
			name:    "dataset filter other category",
			payload: `{"button":"dataset_filter#105#-1"}`,
			want:    Intent{Kind: IntentDatasetFilter, Decision: true, GroupID: 105, CategoryIndex: -1},
		},
		{
			name:    "start command falls through",
			payload: `{"command":"start"}`,
			want:    Intent{Kind: IntentStart},
		},
		{
			name: "plain text falls through",
			text: "hello there",
			want: Intent{Kind: IntentStart},
		},
		{
			name:    "malformed payload falls through",
			payload: `{"button":`,
			want:    Intent{Kind: IntentStart},
		},
		{
			name:    "start analysis wins over passphrase",
			text:    "open sesame",
			payload: `{"button":"start_analysis"}`,
			want:    Intent{Kind: IntentStartAnalysis},
		},
		{
			name:    "passphrase wins over dataset filter",
			text:    "open sesame",
			payload: `{"button":"dataset_filter#1#0"}`,
			want:    Intent{Kind: IntentAdminEnter},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeIntent(tt.text, tt.payload, passphrase)
			if got != tt.want {
				t.Fatalf("DecodeIntent(%q, %q) = %+v, want %+v", tt.text, tt.payload, got, tt.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Open, Sesame!", "opensesame"},
		{"  secret 123 ", "secret"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Fatalf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
