package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Basic normalization
		{"lowercase", "DRAGONS", "dragons"},
		{"spaces to dashes", "The Lantern Keeper", "the-lantern-keeper"},
		{"underscores to dashes", "relay_station_nine", "relay-station-nine"},
		{"already normalized", "hollow-creek", "hollow-creek"},

		// Whitespace handling
		{"trim whitespace", "  dragons  ", "dragons"},
		{"multiple spaces", "multi   word", "multi-word"},
		{"tabs and spaces", "multi\t word", "multi-word"},

		// Special characters
		{"emoji removal", "🐉 Dragons!", "dragons"},
		{"slash replacement", "sci-fi/fantasy", "sci-fi-fantasy"},
		{"apostrophe removal", "don't look back", "dont-look-back"},

		// Dash handling
		{"multiple dashes", "slow--burn", "slow-burn"},
		{"leading dashes", "--dragons", "dragons"},
		{"trailing dashes", "dragons--", "dragons"},
		{"mixed dashes", "--slow--burn--", "slow-burn"},

		// Edge cases
		{"empty string", "", ""},
		{"only spaces", "   ", ""},
		{"only special chars", "!@#$%", ""},
		{"numbers allowed", "top10", "top10"},
		{"mixed case with numbers", "Top 10 Books", "top-10-books"},

		// Real-world titles
		{"subtitle colon", "Relay Station Nine: The Long Silence", "relay-station-nine-the-long-silence"},
		{"possessive", "The Keeper's Daughter", "the-keepers-daughter"},
		{"ampersand", "Salt & Iron", "salt-iron"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slugify(tt.input)
			if result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
