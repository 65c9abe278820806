package cli

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/lexfrei/go-apiclient/client"
)

// call is one API invocation made by a subcommand.
type call func(ctx context.Context, api *client.API, opts []client.RequestOption) (any, error)

// run resolves the profile, builds the client and prints the result of fn.
func (o *globalOptions) run(cmd *cobra.Command, fn call) error {
	code, err := compileJQ(o.jq)
	if err != nil {
		return err
	}

	profile, err := o.resolveProfile(cmd)
	if err != nil {
		return err
	}

	query, err := parseQuery(o.query)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	api := o.newAPI(ctx, cmd, profile)

	var opts []client.RequestOption
	if query.Len() > 0 {
		opts = append(opts, client.WithQuery(query))
	}

	value, err := fn(ctx, api, opts)
	if err != nil {
		return err
	}

	return writeValue(ctx, printer{w: cmd.OutOrStdout(), raw: o.rawOutput}, value, code)
}

func newGetCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Send a GET request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, api *client.API, reqOpts []client.RequestOption) (any, error) {
				return api.Get(ctx, args[0], reqOpts...)
			})
		},
	}
}

func newDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Send a DELETE request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, api *client.API, reqOpts []client.RequestOption) (any, error) {
				return api.Delete(ctx, args[0], reqOpts...)
			})
		},
	}
}

// newBodyCommand creates post, put or patch.
func newBodyCommand(opts *globalOptions, verb string) *cobra.Command {
	var (
		data string
		form []string
	)

	cmd := &cobra.Command{
		Use:   verb + " <path>",
		Short: "Send a " + strings.ToUpper(verb) + " request with a JSON or multipart body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if data != "" && len(form) > 0 {
				return errors.New("--data and --form cannot be combined")
			}

			body, err := requestBody(cmd, data, form)
			if err != nil {
				return err
			}

			return opts.run(cmd, func(ctx context.Context, api *client.API, reqOpts []client.RequestOption) (any, error) {
				switch verb {
				case "put":
					return api.Put(ctx, args[0], body, reqOpts...)
				case "patch":
					return api.Patch(ctx, args[0], body, reqOpts...)
				default:
					return api.Post(ctx, args[0], body, reqOpts...)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON body, @file or - for stdin")
	cmd.Flags().StringArrayVarP(&form, "form", "F", nil, "Multipart file as key=path, repeatable")

	return cmd
}

func requestBody(cmd *cobra.Command, data string, form []string) (*client.Body, error) {
	if len(form) > 0 {
		parts, err := parseForm(form)
		if err != nil {
			return nil, err
		}
		return client.MultipartBody(parts...), nil
	}

	payload, err := parseData(data, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}

	return client.JSONBody(payload), nil
}

func newDownloadCommand(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <path>",
		Short: "Download a response body without decoding it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.jq != "" {
				return errors.New("--jq does not apply to downloads")
			}

			return opts.run(cmd, func(ctx context.Context, api *client.API, reqOpts []client.RequestOption) (any, error) {
				data, err := api.GetFile(ctx, args[0], reqOpts...)
				if err != nil || output == "" {
					return data, err
				}

				if err := os.WriteFile(output, data, 0o600); err != nil {
					return nil, errors.Wrapf(err, "write %s", output)
				}
				return nil, nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the body to a file instead of stdout")

	return cmd
}

func newGQLCommand(opts *globalOptions) *cobra.Command {
	var (
		vars []string
		path string
	)

	cmd := &cobra.Command{
		Use:   "gql <query>",
		Short: "Send a GraphQL query; the query may be @file or - for stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readSource(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			variables, err := parseVariables(vars)
			if err != nil {
				return err
			}

			return opts.run(cmd, func(ctx context.Context, api *client.API, reqOpts []client.RequestOption) (any, error) {
				if path != "" {
					reqOpts = append(reqOpts, client.WithPath(path))
				}

				return api.GQL(ctx, string(raw), variables, reqOpts...)
			})
		},
	}

	cmd.Flags().StringArrayVar(&vars, "var", nil, "Variable as name=value, JSON values keep their type, repeatable")
	cmd.Flags().StringVar(&path, "path", "", "Endpoint path relative to the base URL")
	cmd.Flags().BoolVar(&opts.validateQuery, "validate", false, "Check the query syntax before sending")

	return cmd
}
