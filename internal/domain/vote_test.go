package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		approve int
		reject  int
		want    Verdict
	}{
		{"clear majority passes", 5, 3, VerdictPassed},
		{"clear minority fails", 3, 5, VerdictFailed},
		{"tie fails", 4, 4, VerdictFailed},
		{"no votes fails", 0, 0, VerdictFailed},
		{"single approve passes", 1, 0, VerdictPassed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.approve, tt.reject))
		})
	}
}
