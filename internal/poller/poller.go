// Package poller implements DirectoryPoller (§4.7): a ticking scan of an
// outbox directory, submitting stable, unlocked files to Sender and routing
// the source file to a sent or error directory per outcome.
package poller

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

// Sender is the subset of sender.Sender DirectoryPoller depends on.
type Sender interface {
	Send(ctx context.Context, msg *as2model.Message) error
}

// Config configures one DirectoryPoller's directories and polling cadence.
type Config struct {
	OutboxDir string
	SentDir   string
	ErrorDir  string

	PollInterval time.Duration // default 5s

	// OnSentMoveFailure selects what happens when a successfully-sent
	// file cannot be moved to SentDir: "log" (default, leave it in place
	// and log) or "fail" (move it to ErrorDir instead).
	OnSentMoveFailure string

	SendFilename bool // include Content-Disposition with the source filename

	SenderEmail string // From header value; required by Message.CheckRequired

	// ResubmitDelay and MaxResubmissions implement the retry/backoff
	// schedule Sender itself deliberately doesn't: a file whose Send call
	// exhausts Sender's own internal retryCount attempts is left in the
	// outbox (not routed to ErrorDir) and reattempted on a later poll,
	// once ResubmitDelay has elapsed, up to MaxResubmissions times. Zero
	// MaxResubmissions disables this and routes straight to ErrorDir on
	// the first failure, matching the pre-supplement behavior.
	ResubmitDelay    time.Duration
	MaxResubmissions int
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return 5 * time.Second
	}
	return c.PollInterval
}

func (c Config) resubmitDelay() time.Duration {
	if c.ResubmitDelay <= 0 {
		return 60 * time.Second
	}
	return c.ResubmitDelay
}

// Poller scans Config.OutboxDir on a ticker, tracking each candidate file
// until its size is stable across two consecutive polls (so a file still
// being written is never read mid-write), then — if it is not held open by
// another process — submits it to Sender.
type Poller struct {
	cfg         Config
	partnership *as2model.Partnership
	sender      Sender
	log         zerolog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   bool
	runningMu sync.Mutex

	tracked   map[string]int64
	trackedMu sync.Mutex

	resubmit   map[string]*resubmitState
	resubmitMu sync.Mutex
}

// resubmitState tracks a file's failed-send history across polls.
type resubmitState struct {
	attempts  int
	lastTried time.Time
}

// New builds a Poller over partnership for a single outbox directory.
func New(cfg Config, partnership *as2model.Partnership, sender Sender, log zerolog.Logger) *Poller {
	return &Poller{
		cfg:         cfg,
		partnership: partnership,
		sender:      sender,
		log:         log,
		tracked:     make(map[string]int64),
		resubmit:    make(map[string]*resubmitState),
	}
}

// Start begins background polling. Calling Start on an already-running
// Poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()
	if p.running {
		p.log.Warn().Msg("poller already running")
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true
	p.wg.Add(1)
	go p.run()
	p.log.Info().Str("outbox", p.cfg.OutboxDir).Msg("directory poller started")
}

// Stop halts polling and waits for the in-flight scan to finish.
func (p *Poller) Stop() {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()
	if !p.running {
		return
	}
	p.cancel()
	p.wg.Wait()
	p.running = false
	p.log.Info().Msg("directory poller stopped")
}

func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.scan()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Poller) scan() {
	entries, err := os.ReadDir(p.cfg.OutboxDir)
	if err != nil {
		p.log.Error().Err(err).Str("outbox", p.cfg.OutboxDir).Msg("failed to read outbox directory")
		return
	}

	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		seen[name] = true

		info, err := entry.Info()
		if err != nil {
			continue
		}

		p.trackedMu.Lock()
		prevSize, known := p.tracked[name]
		p.tracked[name] = info.Size()
		p.trackedMu.Unlock()

		if !known || prevSize != info.Size() {
			continue // not yet stable across two polls
		}

		p.trackedMu.Lock()
		delete(p.tracked, name)
		p.trackedMu.Unlock()

		p.process(name)
	}

	p.trackedMu.Lock()
	for name := range p.tracked {
		if !seen[name] {
			delete(p.tracked, name)
		}
	}
	p.trackedMu.Unlock()
}

func (p *Poller) process(name string) {
	path := filepath.Join(p.cfg.OutboxDir, name)
	log := p.log.With().Str("file", name).Logger()

	if wait, ok := p.pendingResubmitWait(name); ok {
		log.Debug().Dur("wait", wait).Msg("deferring resubmission, backoff not yet elapsed")
		return
	}

	fileLock := flock.New(path)
	locked, err := fileLock.TryLock()
	if err != nil {
		log.Warn().Err(err).Msg("failed to probe file lock, skipping this poll")
		return
	}
	if !locked {
		log.Debug().Msg("file is still write-locked by another process, skipping this poll")
		return
	}
	defer fileLock.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Msg("failed to read outbox file")
		return
	}

	msg := p.buildMessage(name, content)

	err = p.sender.Send(p.ctx, msg)
	if err != nil {
		log.Error().Err(err).Msg("send failed")
		if p.shouldResubmit(name) {
			log.Warn().Msg("leaving file in outbox for a later resubmission attempt")
			return
		}
		p.clearResubmit(name)
		p.route(path, name, p.cfg.ErrorDir)
		return
	}

	p.clearResubmit(name)
	log.Info().Str("message-id", msg.MessageID).Msg("send succeeded")
	if moveErr := p.moveTo(path, filepath.Join(p.cfg.SentDir, name)); moveErr != nil {
		if p.cfg.OnSentMoveFailure == "fail" {
			log.Error().Err(moveErr).Msg("failed to move sent file, routing to error directory")
			p.route(path, name, p.cfg.ErrorDir)
			return
		}
		log.Warn().Err(moveErr).Msg("failed to move sent file to sent directory, leaving it in place")
	}
}

// pendingResubmitWait reports whether name is in backoff after a prior
// failed attempt, and if so, how much longer it must wait.
func (p *Poller) pendingResubmitWait(name string) (time.Duration, bool) {
	p.resubmitMu.Lock()
	defer p.resubmitMu.Unlock()

	st, ok := p.resubmit[name]
	if !ok {
		return 0, false
	}
	elapsed := time.Since(st.lastTried)
	delay := p.cfg.resubmitDelay()
	if elapsed >= delay {
		return 0, false
	}
	return delay - elapsed, true
}

// shouldResubmit records a failed attempt for name and reports whether it
// should be left in place for another try (true) or routed to ErrorDir
// now (false, resubmissions exhausted or disabled).
func (p *Poller) shouldResubmit(name string) bool {
	if p.cfg.MaxResubmissions <= 0 {
		return false
	}

	p.resubmitMu.Lock()
	defer p.resubmitMu.Unlock()

	st, ok := p.resubmit[name]
	if !ok {
		st = &resubmitState{}
		p.resubmit[name] = st
	}
	st.attempts++
	st.lastTried = time.Now()
	return st.attempts <= p.cfg.MaxResubmissions
}

func (p *Poller) clearResubmit(name string) {
	p.resubmitMu.Lock()
	delete(p.resubmit, name)
	p.resubmitMu.Unlock()
}

func (p *Poller) buildMessage(name string, content []byte) *as2model.Message {
	body := as2model.NewPart("application/octet-stream", content)
	msg := as2model.NewMessage(as2model.NewMessageID(), body, p.partnership)
	msg.ContentType = "application/octet-stream"
	msg.Subject = fmt.Sprintf("AS2 transmission %s", name)
	msg.SenderEmail = p.cfg.SenderEmail
	if p.cfg.SendFilename {
		msg.SetAttribute(as2model.AttrSourceFilePath, name)
	}
	return msg
}

func (p *Poller) route(srcPath, name, destDir string) {
	dst := p.errorDestination(destDir, name)
	if err := p.moveTo(srcPath, dst); err != nil {
		p.log.Error().Err(err).Str("file", name).Msg("failed to route outbox file")
	}
}

// errorDestination picks a collision-free path for name under destDir,
// per §4.7 step 4 / §6: a prior failed file of the same name must never be
// silently overwritten. The bare name is used if free; otherwise
// ".err-NNN" is suffixed, counting up until an unused path is found.
func (p *Poller) errorDestination(destDir, name string) string {
	dst := filepath.Join(destDir, name)
	if _, err := os.Stat(dst); os.IsNotExist(err) {
		return dst
	}
	for n := 1; ; n++ {
		candidate := filepath.Join(destDir, fmt.Sprintf("%s.err-%03d", name, n))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func (p *Poller) moveTo(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return fmt.Errorf("poller: prepare destination: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("poller: move %s to %s: %w", src, dst, err)
	}
	return nil
}
