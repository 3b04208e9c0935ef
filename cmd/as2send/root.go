// Package main is the entry point for the as2send CLI: a thin cobra
// command tree over the internal core (pipeline, sender, poller,
// certstore, config).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "as2send",
		Short: "Send and receive AS2 (RFC 4130) messages",
		Long: `as2send transforms a payload through an optional compress/sign/encrypt
pipeline, transmits it over HTTP(S) to a trading partner, and reconciles the
resulting MDN, synchronously or asynchronously.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "as2send.yaml", "path to the SenderConfig YAML file")

	cmd.AddCommand(newSendCmd())
	cmd.AddCommand(newPollCmd())
	cmd.AddCommand(newCertCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
