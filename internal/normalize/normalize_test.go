package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase passthrough", "reader@example.com", "reader@example.com"},
		{"mixed case", "Reader@Example.COM", "reader@example.com"},
		{"surrounding whitespace", "  reader@example.com \n", "reader@example.com"},
		{"null bytes stripped", "reader\x00@example.com", "reader@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Email(tt.input))
		})
	}
}

func TestUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "bookworm", "bookworm"},
		{"case folded", "BookWorm", "bookworm"},
		{"spaces become hyphens", "night owl reads", "night-owl-reads"},
		{"accents decomposed", "José", "jose"},
		{"allowed punctuation kept", "jane.doe_99", "jane.doe_99"},
		{"separator runs collapsed", "a--b__c", "a-b-c"},
		{"leading and trailing separators trimmed", "-.reader.-", "reader"},
		{"emoji dropped", "reader📚", "reader"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Username(tt.input))
		})
	}
}

func TestUsernameCollision(t *testing.T) {
	// Variants that must map to the same canonical form.
	assert.Equal(t, Username("BookWorm"), Username("bookworm"))
	assert.Equal(t, Username("café-reads"), Username("cafe-reads"))
}
