package shellquote

import "testing"

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"with space", "'with space'"},
		{"it's", `'it'\''s'`},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuoteIfNeeded(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"Surfaces/Launch.md", "Surfaces/Launch.md"},
		{"name (draft)", "'name (draft)'"},
		{`say "hi"`, `'say "hi"'`},
	}
	for _, tt := range tests {
		if got := QuoteIfNeeded(tt.in); got != tt.want {
			t.Errorf("QuoteIfNeeded(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
