// Package cli implements the apicall command line tool.
package cli

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/lexfrei/go-apiclient/client"
)

type globalOptions struct {
	configPath string
	profile    string
	baseURL    string
	headers    []string
	query      []string
	timeout    time.Duration
	repeat     bool
	rateLimit  int
	insecure   bool
	jq         string
	rawOutput  bool
	verbose    bool

	validateQuery bool
}

// NewRootCommand creates the root command for apicall.
func NewRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "apicall",
		Short: "apicall - REST and GraphQL requests from the command line",
		Long: `apicall sends REST and GraphQL requests to a configured API and prints
the decoded response.

Endpoints, headers and credentials live in named profiles in
~/.config/apicall/config.yaml; flags override the selected profile.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (default: ~/.config/apicall/config.yaml)")
	flags.StringVarP(&opts.profile, "profile", "p", "", "Profile to use from the config file")
	flags.StringVar(&opts.baseURL, "base-url", "", "Base URL, overrides the profile")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "Header as 'Name: value', repeatable")
	flags.StringArrayVarP(&opts.query, "query", "q", nil, "Query parameter as key=value, repeatable")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Request timeout (default 30s)")
	flags.BoolVar(&opts.repeat, "repeat", false, "Retry transient failures")
	flags.IntVar(&opts.rateLimit, "rate-limit", 0, "Maximum requests per minute")
	flags.BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification")
	flags.StringVar(&opts.jq, "jq", "", "jq expression applied to the response")
	flags.BoolVarP(&opts.rawOutput, "raw-output", "r", false, "Print jq string results without quotes")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests to stderr")

	cmd.AddCommand(
		newGetCommand(opts),
		newBodyCommand(opts, "post"),
		newBodyCommand(opts, "put"),
		newBodyCommand(opts, "patch"),
		newDeleteCommand(opts),
		newDownloadCommand(opts),
		newGQLCommand(opts),
	)

	return cmd
}

// Exit codes returned by ExitCode.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitHTTPError    = 2
	ExitGraphQLError = 3
)

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		return ExitHTTPError
	}

	var gqlErr *client.GraphQLError
	if errors.As(err, &gqlErr) {
		return ExitGraphQLError
	}

	return ExitFailure
}
