package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanizio/propertysite/internal/leadform"
	"github.com/yanizio/propertysite/internal/submit"
	"github.com/yanizio/propertysite/internal/whatsapp"
)

func linkCmd() *cobra.Command {
	var (
		p    payloadFlags
		text bool
	)

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print the WhatsApp deep link for a lead without submitting it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := p.parseType()
			if err != nil {
				return err
			}
			listing, err := p.listing()
			if err != nil {
				return err
			}

			// Payload normalisation lives on the view; nothing is sent.
			view, err := leadform.New(ft, leadform.Options{Property: listing, Sender: submit.New("")})
			if err != nil {
				return err
			}
			vals := view.State().Values
			for name, val := range p.values() {
				vals[name] = val
			}
			s := view.Payload(vals)

			out := cmd.OutOrStdout()
			if text {
				fmt.Fprintln(out, whatsapp.Message(s))
			}
			fmt.Fprintln(out, whatsapp.BuildDeepLink(p.number, p.region, s))
			return nil
		},
	}

	p.register(cmd)
	cmd.Flags().BoolVar(&text, "text", false, "Also print the decoded message")
	return cmd
}
