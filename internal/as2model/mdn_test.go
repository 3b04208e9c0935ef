package as2model_test

import (
	"testing"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/stretchr/testify/assert"
)

func TestMDN_Category(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		expected    as2model.DispositionCategory
	}{
		{"processed automatically", "automatic-action/MDN-sent-automatically; processed", as2model.DispositionProcessed},
		{"processed manually", "manual-action/MDN-sent-manually; processed", as2model.DispositionProcessed},
		{"warning", "automatic-action/MDN-sent-automatically; processed/warning: duplicate message", as2model.DispositionWarning},
		{"error", "automatic-action/MDN-sent-automatically; processed/error: decryption failed", as2model.DispositionError},
		{"failed", "automatic-action/MDN-sent-automatically; failed/failure: unsupported request", as2model.DispositionFailed},
		{"unrecognized defaults to error", "something-unexpected", as2model.DispositionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mdn := &as2model.MDN{Disposition: tt.disposition}
			assert.Equal(t, tt.expected, mdn.Category())
		})
	}
}

func TestMDN_Category_Nil(t *testing.T) {
	var mdn *as2model.MDN
	assert.Equal(t, as2model.DispositionError, mdn.Category())
}
