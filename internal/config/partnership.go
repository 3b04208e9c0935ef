package config

import (
	"fmt"
	"os"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"gopkg.in/yaml.v3"
)

// partnershipFile is the on-disk YAML shape for a set of named partnerships.
// Partnership lookup and XML loading proper are external collaborators per
// this codebase's scope; this YAML loader exists only so cmd/as2send can
// exercise the core without a full partnership-management service attached.
type partnershipFile struct {
	Partnerships map[string]yamlPartnership `yaml:"partnerships"`
}

type yamlPartnership struct {
	SenderAS2ID   string `yaml:"senderAs2Id"`
	ReceiverAS2ID string `yaml:"receiverAs2Id"`
	URL           string `yaml:"url"`

	SigningAlgorithm    string `yaml:"signingAlgorithm"`
	EncryptionAlgorithm string `yaml:"encryptionAlgorithm"`
	CompressionType     string `yaml:"compressionType"`
	CompressBeforeSign  bool   `yaml:"compressBeforeSign"`

	MdnMode            string `yaml:"mdnMode"`
	ReceiptDeliveryURL string `yaml:"receiptDeliveryUrl"`
	MdnOptions         string `yaml:"mdnOptions"`
	DispositionNotificationTo string `yaml:"dispositionNotificationTo"`

	ContentTransferEncoding string `yaml:"contentTransferEncoding"`

	SenderCertAlias   string `yaml:"senderCertAlias"`
	ReceiverCertAlias string `yaml:"receiverCertAlias"`

	IncludeCertificateInSignedContent bool `yaml:"includeCertificateInSignedContent"`
	UseRFC3851MICNames                bool `yaml:"useRfc3851MicNames"`
	QuoteHeaderValues                 bool `yaml:"quoteHeaderValues"`

	RetryCount int `yaml:"retryCount"`
}

// LoadPartnerships parses a named set of Partnership snapshots from a YAML
// file, validating each one.
func LoadPartnerships(path string) (map[string]*as2model.Partnership, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read partnerships %s: %w", path, err)
	}

	var file partnershipFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: parse partnerships %s: %w", path, err)
	}

	result := make(map[string]*as2model.Partnership, len(file.Partnerships))
	for name, yp := range file.Partnerships {
		p := &as2model.Partnership{
			SenderAS2ID:                        yp.SenderAS2ID,
			ReceiverAS2ID:                       yp.ReceiverAS2ID,
			URL:                                 yp.URL,
			SigningAlgorithm:                    yp.SigningAlgorithm,
			EncryptionAlgorithm:                 yp.EncryptionAlgorithm,
			CompressionType:                     yp.CompressionType,
			CompressBeforeSign:                  yp.CompressBeforeSign,
			MdnMode:                             as2model.MdnMode(yp.MdnMode),
			ReceiptDeliveryURL:                  yp.ReceiptDeliveryURL,
			MdnOptions:                          yp.MdnOptions,
			DispositionNotificationTo:           yp.DispositionNotificationTo,
			ContentTransferEncoding:             yp.ContentTransferEncoding,
			SenderCertAlias:                     yp.SenderCertAlias,
			ReceiverCertAlias:                   yp.ReceiverCertAlias,
			IncludeCertificateInSignedContent:   yp.IncludeCertificateInSignedContent,
			UseRFC3851MICNames:                  yp.UseRFC3851MICNames,
			QuoteHeaderValues:                   yp.QuoteHeaderValues,
			RetryCount:                          yp.RetryCount,
		}
		if p.MdnMode == "" {
			p.MdnMode = as2model.MdnNone
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("config: partnership %q: %w", name, err)
		}
		result[name] = p
	}
	return result, nil
}
