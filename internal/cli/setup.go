package cli

import (
	"context"
	"maps"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/lexfrei/go-apiclient/client"
	"github.com/lexfrei/go-apiclient/internal/config"
	"github.com/lexfrei/go-apiclient/internal/middleware"
	"github.com/lexfrei/go-apiclient/observability"
	"github.com/lexfrei/go-apiclient/transport/httptransport"
)

// userAgent is sent unless a profile or flag sets one.
const userAgent = "apicall"

// resolveProfile loads the selected profile and applies flag overrides.
// A missing default config file is not an error as long as flags name a base URL.
func (o *globalOptions) resolveProfile(cmd *cobra.Command) (*config.Profile, error) {
	path := o.configPath
	explicit := path != ""

	if !explicit {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}

	profile := &config.Profile{}

	if _, statErr := os.Stat(path); explicit || o.profile != "" || !os.IsNotExist(statErr) {
		file, err := config.Load(path)
		if err != nil {
			return nil, err
		}

		selected, err := file.Profile(o.profile)
		if err != nil {
			return nil, err
		}

		copied := *selected
		copied.Headers = maps.Clone(selected.Headers)
		profile = &copied
	}

	flags := cmd.Flags()

	if o.baseURL != "" {
		profile.BaseURL = o.baseURL
	}

	headers, err := parseHeaders(o.headers)
	if err != nil {
		return nil, err
	}
	if len(headers) > 0 {
		if profile.Headers == nil {
			profile.Headers = make(map[string]string, len(headers))
		}
		maps.Copy(profile.Headers, headers)
	}

	if flags.Changed("timeout") {
		profile.Timeout = o.timeout
	}
	if flags.Changed("repeat") {
		profile.RepeatMode = o.repeat
	}
	if flags.Changed("rate-limit") {
		profile.RateLimit = o.rateLimit
	}
	if flags.Changed("insecure") {
		profile.InsecureSkipVerify = o.insecure
	}

	if err := profile.Validate(); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "invalid profile"), config.ErrInvalid)
	}

	return profile, nil
}

func (o *globalOptions) newLogger(cmd *cobra.Command) observability.Logger {
	base := logrus.New()
	base.SetOutput(cmd.ErrOrStderr())
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if o.verbose {
		base.SetLevel(logrus.DebugLevel)
	} else {
		base.SetLevel(logrus.WarnLevel)
	}

	return observability.NewLogrusLogger(base)
}

// newAPI builds the client facade for a resolved profile.
func (o *globalOptions) newAPI(ctx context.Context, cmd *cobra.Command, profile *config.Profile) *client.API {
	logger := o.newLogger(cmd)

	transportOpts := []httptransport.Option{
		httptransport.WithLogger(logger),
		httptransport.WithUserAgent(userAgent),
		httptransport.WithRateLimit(profile.RateLimit),
	}
	if profile.Retry.Max > 0 {
		transportOpts = append(transportOpts,
			httptransport.WithRetry(profile.Retry.Max, profile.Retry.InitialWait, profile.Retry.MaxWait))
	}
	if profile.InsecureSkipVerify {
		transportOpts = append(transportOpts, httptransport.WithInsecureSkipVerify())
	}

	builder := client.NewBuilder(httptransport.New(transportOpts...)).
		WithBaseURL(profile.BaseURL).
		WithHeaders(profile.Headers).
		WithTimeout(profile.Timeout).
		WithRepeatMode(profile.RepeatMode).
		WithErrorHandling(client.ErrorHandlers{
			OnHTTPError: func(status int, _ string) {
				logger.Debug("api error status", observability.F("status", status))
			},
		}).
		WithInterceptor(client.NewRequestIDInterceptor())

	if profile.OAuth2 != nil {
		builder.WithInterceptor(client.NewOAuth2Interceptor(tokenSource(ctx, profile)))
	}

	if o.validateQuery {
		builder.WithGraphQLOptions(client.WithQueryValidation())
	}

	if o.verbose {
		builder.WithInterceptor(client.NewLoggingInterceptor(logger))
	}

	return builder.BuildAPI()
}

// tokenSource returns a caching client credentials token source. Token
// requests honour the profile's TLS setting.
func tokenSource(ctx context.Context, profile *config.Profile) oauth2.TokenSource {
	cc := &clientcredentials.Config{
		ClientID:     profile.OAuth2.ClientID,
		ClientSecret: profile.OAuth2.ClientSecret,
		TokenURL:     profile.OAuth2.TokenURL,
		Scopes:       profile.OAuth2.Scopes,
	}

	if profile.InsecureSkipVerify {
		httpClient := &http.Client{
			Transport: middleware.TLSConfig(middleware.InsecureSkipVerify())(http.DefaultTransport),
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	return cc.TokenSource(ctx)
}
