package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evolvent-systems/as2send/internal/config"
	"github.com/evolvent-systems/as2send/internal/logging"
	"github.com/evolvent-systems/as2send/internal/poller"
	"github.com/spf13/cobra"
)

func newPollCmd() *cobra.Command {
	var partnershipsPath, partnershipName string

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll an outbox directory and send files as they appear",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()

			partnerships, err := config.LoadPartnerships(partnershipsPath)
			if err != nil {
				return err
			}
			partnership, ok := partnerships[partnershipName]
			if !ok {
				return fmt.Errorf("partnership %q not found in %s", partnershipName, partnershipsPath)
			}

			pollerCfg := poller.Config{
				OutboxDir:         a.cfg.OutboxDir,
				SentDir:           a.cfg.SentDir,
				ErrorDir:          a.cfg.ErrorDir,
				PollInterval:      time.Duration(a.cfg.PollIntervalSeconds) * time.Second,
				OnSentMoveFailure: a.cfg.OnSentMoveFailure,
				SendFilename:      a.cfg.SendFilename,
				SenderEmail:       a.cfg.SenderEmail,
				ResubmitDelay:     time.Duration(a.cfg.ResubmitDelaySeconds) * time.Second,
				MaxResubmissions:  a.cfg.MaxResubmissions,
			}
			p := poller.New(pollerCfg, partnership, a.sender, logging.WithComponent("poller"))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p.Start(ctx)
			fmt.Printf("polling %s (partnership %q); ctrl-c to stop\n", a.cfg.OutboxDir, partnershipName)
			<-ctx.Done()
			p.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&partnershipsPath, "partnerships", "partnerships.yaml", "path to the partnerships YAML file")
	cmd.Flags().StringVar(&partnershipName, "partnership", "", "name of the partnership to poll for (required)")
	cmd.MarkFlagRequired("partnership")

	return cmd
}
