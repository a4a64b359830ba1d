// cmd/leadctl/main.go
//
// leadctl – operator and smoke-test CLI for the lead pipeline.
//
//	leadctl submit      run a lead through validation, POST, and chat link
//	leadctl link        print the chat deep link for a payload
//	leadctl properties  list the embedded catalogue
//	leadctl version     print build information
//
// Chat links are printed, never opened in a browser.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "leadctl",
		Short: "Submit test leads and inspect the property catalogue",
		Long: `leadctl drives the same client pipeline the site's forms use.

Use it to smoke-test a deployment's /api/submit-form endpoint, to preview
the WhatsApp message a lead produces, or to list the listings the site
ships with.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.AddCommand(
		submitCmd(),
		linkCmd(),
		propertiesCmd(),
		versionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
