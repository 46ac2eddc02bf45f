package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "none"},
		{"  ", "none"},
		{"active", "active"},
		{"trialing", "trialing"},
		{"past_due", "past_due"},
		{"unpaid", "past_due"},
		{"canceled", "canceled"},
		{"incomplete_expired", "canceled"},
		{"incomplete", "incomplete"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeStatus(tt.in), "input %q", tt.in)
	}
}
