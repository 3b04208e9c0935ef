package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/evolvent-systems/as2send/internal/audit"
	"github.com/evolvent-systems/as2send/internal/config"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var partnershipsPath, partnershipName, filePath, contentType, subject, senderEmail string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a single file as one AS2 message",
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

			content, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("read %s: %w", filePath, err)
			}

			ct := contentType
			if ct == "" {
				ct = a.cfg.MimeType
			}
			body := as2model.NewPart(ct, content)

			msg := as2model.NewMessage(as2model.NewMessageID(), body, partnership)
			msg.ContentType = ct
			msg.Subject = subject
			if senderEmail != "" {
				msg.SenderEmail = senderEmail
			} else {
				msg.SenderEmail = a.cfg.SenderEmail
			}
			if a.cfg.SendFilename {
				msg.SetAttribute(as2model.AttrSourceFilePath, filePath)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			sendErr := a.sender.Send(ctx, msg)

			if a.audit != nil {
				entry := &audit.Entry{
					MessageID:     msg.MessageID,
					SenderAS2ID:   partnership.SenderAS2ID,
					ReceiverAS2ID: partnership.ReceiverAS2ID,
					URL:           partnership.URL,
					Direction:     audit.DirectionOutbound,
					MIC:           msg.Attribute(as2model.AttrOriginalMIC),
					CreatedAt:     time.Now(),
				}
				if sendErr != nil {
					entry.Status = as2model.StatusFailed
					entry.ErrorMessage = sendErr.Error()
				} else {
					entry.Status = as2model.StatusSent
				}
				_ = a.audit.Record(entry)
			}

			if sendErr != nil {
				return fmt.Errorf("send %s: %w", msg.MessageID, sendErr)
			}

			fmt.Printf("sent %s as message-id %s\n", filePath, msg.MessageID)
			return nil
		},
	}

	cmd.Flags().StringVar(&partnershipsPath, "partnerships", "partnerships.yaml", "path to the partnerships YAML file")
	cmd.Flags().StringVar(&partnershipName, "partnership", "", "name of the partnership to send under (required)")
	cmd.Flags().StringVar(&filePath, "file", "", "path to the file to send (required)")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Content-Type of the payload (defaults to config mimeType)")
	cmd.Flags().StringVar(&subject, "subject", "AS2 transmission", "message Subject")
	cmd.Flags().StringVar(&senderEmail, "sender-email", "", "From header value (defaults to config senderEmail)")
	cmd.MarkFlagRequired("partnership")
	cmd.MarkFlagRequired("file")

	return cmd
}
