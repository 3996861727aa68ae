package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/muralfolio/internal/backend/auth"
	"github.com/jo-hoe/muralfolio/internal/card"
)

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func newQRCmd(options *globalOptions) *cobra.Command {
	var (
		url  string
		size int
		out  string
	)
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Render the card QR code as PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				config, err := options.loadConfig()
				if err != nil {
					return err
				}
				url = config.Card.SiteURL
			}
			png, err := card.QRCode(url, size)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, png)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "content to encode (defaults to card.siteURL from config)")
	cmd.Flags().IntVar(&size, "size", 256, "image size in pixels")
	cmd.Flags().StringVarP(&out, "out", "o", "qr.png", "output file, - for stdout")
	return cmd
}

func newVCardCmd(options *globalOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "vcard",
		Short: "Write the contact card as a .vcf file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := options.loadConfig()
			if err != nil {
				return err
			}
			owner := config.Card.Owner()
			if out == "" {
				out = card.FileName(owner)
			}
			data, err := card.VCard(owner)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, data)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	return cmd
}

func newTokenCmd(options *globalOptions) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin bearer token signed with the configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := options.loadConfig()
			if err != nil {
				return err
			}
			if config.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwtSecret is not configured")
			}
			if role == "" {
				role = config.Auth.AdminRole
			}
			token, err := auth.NewVerifier(config.Auth.JWTSecret, config.Auth.Issuer, config.Auth.AdminRole).Issue(subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "muralctl", "token subject")
	cmd.Flags().StringVar(&role, "role", "", "role claim (defaults to auth.adminRole)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
