package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/propertysite/internal/form"
	"github.com/yanizio/propertysite/internal/leadform"
	"github.com/yanizio/propertysite/internal/submit"
	"github.com/yanizio/propertysite/internal/whatsapp"
)

func submitCmd() *cobra.Command {
	var (
		p        payloadFlags
		endpoint string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate and submit a lead, then print its chat link",
		Long: `Submit runs the form pipeline end to end: the same field rules as the
site, a POST to <endpoint>/api/submit-form, and on success the WhatsApp
deep link the visitor would have been sent to.`,
		Example: `  leadctl submit --endpoint https://example.com --name "Asha Rao" \
      --email asha@example.com --phone 9876543210`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := p.parseType()
			if err != nil {
				return err
			}
			listing, err := p.listing()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			client := submit.New(endpoint)
			client.HTTPClient = &http.Client{Timeout: timeout}
			redirect := whatsapp.NewRedirect(p.number, p.region,
				whatsapp.PrintOpener{W: out}, zap.NewNop().Sugar())

			var ref string
			view, err := leadform.New(ft, leadform.Options{
				Property: listing,
				Sender:   client,
				Redirect: redirect,
				OnSuccess: func(res submit.Result, _ string) {
					ref = res.Data.Reference
				},
			})
			if err != nil {
				return err
			}
			view.Fill(p.values())

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			switch view.Submit(ctx) {
			case form.OutcomeInvalid:
				errs := view.State().Errors
				names := make([]string, 0, len(errs))
				for name := range errs {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", name, errs[name])
				}
				return errors.New("lead is invalid")
			case form.OutcomeFailed:
				return errors.New(view.State().SubmitError)
			}

			redirect.Wait()
			fmt.Fprintf(out, "submitted %s lead (reference %s)\n", ft, ref)
			return nil
		},
	}

	p.register(cmd)
	cmd.Flags().StringVar(&endpoint, "endpoint", "http://localhost:8080", "Base URL of the site")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Request timeout")
	return cmd
}
