package main

import (
	"fmt"
	"os"

	"github.com/evolvent-systems/as2send/internal/certstore"
	"github.com/spf13/cobra"
)

func newCertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cert",
		Short: "Manage certificate aliases used for signing, encryption, and verification",
	}
	cmd.AddCommand(newCertImportP12Cmd())
	cmd.AddCommand(newCertImportPEMCmd())
	cmd.AddCommand(newCertListCmd())
	return cmd
}

func openCertStore() (*certstore.Store, error) {
	a, err := buildApp(configPath)
	if err != nil {
		return nil, err
	}
	return a.certs, nil
}

func newCertImportP12Cmd() *cobra.Command {
	var alias, password string

	cmd := &cobra.Command{
		Use:   "import-p12 <file.p12>",
		Short: "Import a PKCS#12 bundle as a signing/decryption identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			record, err := certstore.ImportPKCS12(alias, data, password)
			if err != nil {
				return err
			}
			store, err := openCertStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(record); err != nil {
				return err
			}
			fmt.Printf("imported %q (subject=%s)\n", alias, record.Subject)
			return nil
		},
	}
	cmd.Flags().StringVar(&alias, "alias", "", "alias to store the identity under (required)")
	cmd.Flags().StringVar(&password, "password", "", "PKCS#12 bundle password")
	cmd.MarkFlagRequired("alias")
	return cmd
}

func newCertImportPEMCmd() *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "import-pem <file.pem>",
		Short: "Import a trading partner's public certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			record, err := certstore.ImportCertificatePEM(alias, data)
			if err != nil {
				return err
			}
			store, err := openCertStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(record); err != nil {
				return err
			}
			fmt.Printf("imported %q (subject=%s)\n", alias, record.Subject)
			return nil
		},
	}
	cmd.Flags().StringVar(&alias, "alias", "", "alias to store the certificate under (required)")
	cmd.MarkFlagRequired("alias")
	return cmd
}

func newCertListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored certificate aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCertStore()
			if err != nil {
				return err
			}
			defer store.Close()
			records, err := store.List()
			if err != nil {
				return err
			}
			for _, r := range records {
				kind := "certificate-only"
				if len(r.KeyPEM) > 0 {
					kind = "signing identity"
				}
				fmt.Printf("%-24s %-20s %s (expires %s)\n", r.Alias, kind, r.Subject, r.NotAfter.Format("2006-01-02"))
			}
			return nil
		},
	}
}
