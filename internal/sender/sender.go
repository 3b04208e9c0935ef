// Package sender implements Sender (§4.4): the top-level orchestrator that
// validates a Message, runs it through SecurityPipeline, posts it, and
// resolves the synchronous or asynchronous MDN.
package sender

import (
	"context"
	"errors"
	"time"

	"github.com/evolvent-systems/as2send/internal/as2crypto"
	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/evolvent-systems/as2send/internal/header"
	"github.com/evolvent-systems/as2send/internal/mdn"
	"github.com/evolvent-systems/as2send/internal/pending"
	"github.com/evolvent-systems/as2send/internal/pipeline"
	"github.com/evolvent-systems/as2send/internal/transport"
	"github.com/rs/zerolog"
)

// Retryable is implemented by the subset of errors Sender will retry:
// HttpResponseError and IOError. DispositionErrorType, InvalidParameterError,
// ConfigError, and CryptoError are all terminal.
type Retryable interface {
	error
	Retryable() bool
}

// Sender is the per-partnership send orchestrator.
type Sender struct {
	pipeline  *pipeline.Pipeline
	crypto    as2crypto.Provider
	transport *transport.HttpTransport
	mdn       *mdn.Receiver
	pending   *pending.Store
	dumper    transport.Dumper
	log       zerolog.Logger
}

// New builds a Sender. crypto is the same Provider the pipeline was built
// with; Sender uses it directly for the MIC computation step (§4.4 step 3)
// that sits between securing the body and posting it.
func New(pl *pipeline.Pipeline, crypto as2crypto.Provider, tr *transport.HttpTransport, receiver *mdn.Receiver, pendingStore *pending.Store, dumper transport.Dumper, log zerolog.Logger) *Sender {
	return &Sender{pipeline: pl, crypto: crypto, transport: tr, mdn: receiver, pending: pendingStore, dumper: dumper, log: log}
}

// Send implements §4.4 steps 1-9: validate, secure, compute MIC, persist
// pending state for async MDN, build headers, POST, and resolve the
// synchronous MDN (if requested), retrying retryable failures up to
// msg.Partnership.RetryCount times.
func (s *Sender) Send(ctx context.Context, msg *as2model.Message) error {
	if err := msg.CheckRequired(); err != nil {
		return err
	}
	if err := msg.Partnership.Validate(); err != nil {
		return err
	}

	var lastErr error
	attempts := msg.Partnership.RetryCount + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			s.log.Warn().Str("message-id", msg.MessageID).Int("attempt", attempt+1).Err(lastErr).Msg("retrying send")
		}

		err := s.attempt(ctx, msg)
		if err == nil {
			return nil
		}
		lastErr = err

		retryable, ok := err.(Retryable)
		if !ok || !retryable.Retryable() {
			return err
		}
	}
	return lastErr
}

func (s *Sender) attempt(ctx context.Context, msg *as2model.Message) error {
	var originalMIC as2model.MIC
	var micErr error

	wantsMIC := msg.Partnership.MdnMode != as2model.MdnNone
	// §4.2: headers are folded into the MIC input iff the partnership
	// configures signing, encryption, or compression; a plain send with an
	// MDN request still MICs the content alone.
	includeHeaders := msg.Partnership.SigningAlgorithm != "" || msg.Partnership.EncryptionAlgorithm != "" || msg.Partnership.CompressionType != ""
	secured, err := s.pipeline.Secure(msg, func(part *as2model.Part) {
		if !wantsMIC {
			return
		}
		micAlg := msg.Partnership.DefaultMICAlgorithm()
		if msg.Partnership.SigningAlgorithm != "" {
			micAlg = msg.Partnership.SigningAlgorithm
		}
		originalMIC, micErr = s.computeMIC(part, includeHeaders, micAlg)
	})
	if err != nil {
		return err
	}
	if micErr != nil {
		return &as2model.CryptoError{MessageID: msg.MessageID, Op: "compute mic", Err: micErr}
	}

	if !originalMIC.IsZero() {
		msg.SetAttribute(as2model.AttrOriginalMIC, originalMIC.String())
	}

	if msg.Partnership.MdnMode == as2model.MdnAsync && s.pending != nil {
		record := &as2model.PendingRecord{
			MessageID:   msg.MessageID,
			OriginalMIC: originalMIC.String(),
			PendingFile: msg.Attribute(as2model.AttrSourceFilePath),
		}
		if err := s.pending.Put(record); err != nil {
			return &as2model.IOError{MessageID: msg.MessageID, Op: "persist pending record", Err: err}
		}
	}

	headers := header.Build(msg)

	readTimeout := 60 * time.Second
	resp, err := s.transport.Post(ctx, msg.Partnership.URL, headers, secured.Content, readTimeout, s.dumper, msg.MessageID)
	if err != nil {
		return err
	}

	if !transport.IsSuccess(resp.StatusCode) {
		return &as2model.HttpResponseError{URL: msg.Partnership.URL, StatusCode: resp.StatusCode, Reason: resp.Status}
	}

	if msg.Partnership.MdnMode != as2model.MdnSync {
		return nil
	}

	if s.mdn == nil {
		return nil
	}

	_, verifyErr := s.mdn.Receive(msg, resp.Header, resp.Body, originalMIC)
	var unverified *as2model.MdnVerifyError
	if errors.As(verifyErr, &unverified) {
		s.log.Warn().Str("message-id", msg.MessageID).Err(verifyErr).Msg("mdn could not be verified; message counts as delivered")
		return nil
	}
	if verifyErr != nil {
		return verifyErr
	}
	return nil
}

func (s *Sender) computeMIC(part *as2model.Part, includeHeaders bool, algorithm string) (as2model.MIC, error) {
	return s.crypto.ComputeMIC(part, includeHeaders, algorithm)
}
