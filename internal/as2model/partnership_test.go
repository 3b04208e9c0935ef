package as2model_test

import (
	"testing"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartnership_Validate(t *testing.T) {
	tests := []struct {
		name        string
		partnership as2model.Partnership
		wantErr     bool
	}{
		{
			name:        "no sign/encrypt/mdn, always valid",
			partnership: as2model.Partnership{},
			wantErr:     false,
		},
		{
			name: "async mdn without receipt-delivery url fails",
			partnership: as2model.Partnership{
				MdnMode: as2model.MdnAsync,
			},
			wantErr: true,
		},
		{
			name: "async mdn with receipt-delivery url passes",
			partnership: as2model.Partnership{
				MdnMode:            as2model.MdnAsync,
				ReceiptDeliveryURL: "https://example.com/mdn",
			},
			wantErr: false,
		},
		{
			name: "signing without sender alias fails",
			partnership: as2model.Partnership{
				SigningAlgorithm: "sha256",
			},
			wantErr: true,
		},
		{
			name: "signing with sender alias passes",
			partnership: as2model.Partnership{
				SigningAlgorithm: "sha256",
				SenderCertAlias:  "our-key",
			},
			wantErr: false,
		},
		{
			name: "encryption without receiver alias fails",
			partnership: as2model.Partnership{
				EncryptionAlgorithm: "aes256",
			},
			wantErr: true,
		},
		{
			name: "encryption with receiver alias passes",
			partnership: as2model.Partnership{
				EncryptionAlgorithm: "aes256",
				ReceiverCertAlias:   "partner-cert",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.partnership.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPartnership_EffectiveCTE(t *testing.T) {
	assert.Equal(t, "binary", (&as2model.Partnership{}).EffectiveCTE())
	assert.Equal(t, "base64", (&as2model.Partnership{ContentTransferEncoding: "base64"}).EffectiveCTE())
}

func TestPartnership_DefaultMICAlgorithm(t *testing.T) {
	assert.Equal(t, "sha-256", (&as2model.Partnership{}).DefaultMICAlgorithm())
	assert.Equal(t, "sha1", (&as2model.Partnership{UseRFC3851MICNames: true}).DefaultMICAlgorithm())
}
