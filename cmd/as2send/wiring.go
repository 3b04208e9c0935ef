package main

import (
	"fmt"
	"time"

	"github.com/evolvent-systems/as2send/internal/as2crypto"
	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/evolvent-systems/as2send/internal/audit"
	"github.com/evolvent-systems/as2send/internal/certstore"
	"github.com/evolvent-systems/as2send/internal/config"
	"github.com/evolvent-systems/as2send/internal/logging"
	"github.com/evolvent-systems/as2send/internal/mdn"
	"github.com/evolvent-systems/as2send/internal/pending"
	"github.com/evolvent-systems/as2send/internal/pipeline"
	"github.com/evolvent-systems/as2send/internal/sender"
	"github.com/evolvent-systems/as2send/internal/transport"
	"github.com/rs/zerolog"
)

// app bundles the wiring shared by the send and poll subcommands.
type app struct {
	cfg     *config.SenderConfig
	certs   *certstore.Store
	audit   *audit.Log
	sender  *sender.Sender
	pending *pending.Store
}

func buildApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	certStorePath := cfg.CertStorePath
	if certStorePath == "" {
		certStorePath = "certstore.db"
	}
	certs, err := certstore.Open(certStorePath, logging.WithComponent("certstore"))
	if err != nil {
		return nil, fmt.Errorf("open certificate store: %w", err)
	}
	certProvider := certstore.NewProvider(certs)

	cryptoProvider := as2crypto.New(logging.WithComponent("as2crypto"))
	pl := pipeline.New(cryptoProvider, certProvider, logging.WithComponent("pipeline"))

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		auditLog, err = audit.Open(cfg.AuditLogPath, logging.WithComponent("audit"))
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
	}

	pendingDir := cfg.PendingDir
	if pendingDir == "" {
		pendingDir = "pending"
	}
	pendingStore, err := pending.Open(pendingDir)
	if err != nil {
		return nil, fmt.Errorf("open pending store: %w", err)
	}

	var dumper transport.Dumper
	if cfg.RequestDumpDir != "" {
		fd, err := transport.NewFileDumper(cfg.RequestDumpDir)
		if err != nil {
			return nil, fmt.Errorf("open dump directory: %w", err)
		}
		dumper = fd
	}

	tr := transport.New(transport.Config{
		ConnectTimeoutMS: cfg.ConnectTimeoutMS,
		ReadTimeoutMS:    cfg.ReadTimeoutMS,
	}, logging.WithComponent("transport"))

	mic := &auditMICHandler{audit: auditLog, log: logging.WithComponent("mdn")}
	receiver := mdn.New(cryptoProvider, certProvider, mic, nil, logging.WithComponent("mdn"))

	snd := sender.New(pl, cryptoProvider, tr, receiver, pendingStore, dumper, logging.WithComponent("sender"))

	return &app{cfg: cfg, certs: certs, audit: auditLog, sender: snd, pending: pendingStore}, nil
}

func (a *app) close() {
	if a.certs != nil {
		a.certs.Close()
	}
	if a.audit != nil {
		a.audit.Close()
	}
}

// auditMICHandler records MIC match/mismatch outcomes, logging always and
// writing to the audit log when one is configured.
type auditMICHandler struct {
	audit *audit.Log
	log   zerolog.Logger
}

func (h *auditMICHandler) OnMICMatch(msg *as2model.Message, returned as2model.MIC) {
	h.log.Info().Str("message-id", msg.MessageID).Str("mic", returned.String()).Msg("mdn mic matches original")
	h.record(msg, returned.String())
}

func (h *auditMICHandler) OnMICMismatch(msg *as2model.Message, original, returned as2model.MIC) {
	h.log.Warn().Str("message-id", msg.MessageID).Str("original-mic", original.String()).Str("returned-mic", returned.String()).Msg("mdn mic does not match original")
	h.record(msg, returned.String())
}

func (h *auditMICHandler) record(msg *as2model.Message, returnedMIC string) {
	if h.audit == nil {
		return
	}
	entry := &audit.Entry{
		MessageID:     msg.MessageID,
		SenderAS2ID:   msg.Partnership.SenderAS2ID,
		ReceiverAS2ID: msg.Partnership.ReceiverAS2ID,
		URL:           msg.Partnership.URL,
		Direction:     audit.DirectionMdn,
		Status:        as2model.StatusSent,
		MIC:           returnedMIC,
		CreatedAt:     time.Now(),
	}
	if err := h.audit.Record(entry); err != nil {
		h.log.Warn().Err(err).Str("message-id", msg.MessageID).Msg("failed to record mdn audit entry")
	}
}
