package as2model_test

import (
	"testing"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/stretchr/testify/assert"
)

func TestMIC_Equal(t *testing.T) {
	tests := []struct {
		name     string
		a        as2model.MIC
		b        as2model.MIC
		expected bool
	}{
		{
			name:     "identical digest and algorithm",
			a:        as2model.MIC{Digest: []byte{1, 2, 3}, Algorithm: "sha-256"},
			b:        as2model.MIC{Digest: []byte{1, 2, 3}, Algorithm: "sha-256"},
			expected: true,
		},
		{
			name:     "same digest, different algorithm spelling",
			a:        as2model.MIC{Digest: []byte{1, 2, 3}, Algorithm: "sha256"},
			b:        as2model.MIC{Digest: []byte{1, 2, 3}, Algorithm: "sha-256"},
			expected: false,
		},
		{
			name:     "different digest",
			a:        as2model.MIC{Digest: []byte{1, 2, 3}, Algorithm: "sha-256"},
			b:        as2model.MIC{Digest: []byte{1, 2, 4}, Algorithm: "sha-256"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Equal(tt.b))
		})
	}
}

func TestMIC_String(t *testing.T) {
	mic := as2model.MIC{Digest: []byte("hello"), Algorithm: "sha-256"}
	assert.Equal(t, "aGVsbG8=, sha-256", mic.String())
}

func TestMIC_IsZero(t *testing.T) {
	assert.True(t, as2model.MIC{}.IsZero())
	assert.False(t, as2model.MIC{Digest: []byte{1}}.IsZero())
}
