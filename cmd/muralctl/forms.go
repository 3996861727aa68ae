package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/muralfolio/internal/client"
	"github.com/jo-hoe/muralfolio/internal/tui"
)

func newSubmitCmd(options *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Fill in and send a mural application interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), options.client())
		},
	}
}

func newContactCmd(options *globalOptions) *cobra.Command {
	var contact client.Contact
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message through the contact form",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := options.client().SendContact(cmd.Context(), contact); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "message sent")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&contact.Name, "name", "", "your name")
	flags.StringVar(&contact.Email, "email", "", "your email address")
	flags.StringVar(&contact.ProjectType, "project-type", "", "kind of project")
	flags.StringVar(&contact.Message, "message", "", "message body")
	return cmd
}
