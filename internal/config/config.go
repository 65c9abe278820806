// Package config loads apicall profiles from YAML.
package config

import (
	"time"

	"github.com/cockroachdb/errors"
)

// ErrInvalid marks a configuration that failed validation.
var ErrInvalid = errors.New("invalid configuration")

// ErrUnknownProfile is returned when a named profile does not exist.
var ErrUnknownProfile = errors.New("unknown profile")

// File is the on-disk layout: a set of named profiles and the one used when
// none is requested.
type File struct {
	Default  string              `yaml:"default,omitempty"`
	Profiles map[string]*Profile `yaml:"profiles"`
}

// Profile describes one API endpoint.
type Profile struct {
	BaseURL            string            `yaml:"base_url"`
	Headers            map[string]string `yaml:"headers,omitempty"`
	Timeout            time.Duration     `yaml:"timeout,omitempty"`
	RepeatMode         bool              `yaml:"repeat_mode,omitempty"`
	RateLimit          int               `yaml:"rate_limit,omitempty"`
	Retry              Retry             `yaml:"retry,omitempty"`
	OAuth2             *OAuth2           `yaml:"oauth2,omitempty"`
	InsecureSkipVerify bool              `yaml:"insecure_skip_verify,omitempty"`
}

// Retry is the retry policy applied to requests in repeat mode.
type Retry struct {
	Max         int           `yaml:"max,omitempty"`
	InitialWait time.Duration `yaml:"initial_wait,omitempty"`
	MaxWait     time.Duration `yaml:"max_wait,omitempty"`
}

// OAuth2 holds client credentials grant settings.
type OAuth2 struct {
	TokenURL     string   `yaml:"token_url"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes,omitempty"`
}

// Profile returns the named profile. An empty name selects the default
// profile, or the only profile when the file has exactly one.
func (f *File) Profile(name string) (*Profile, error) {
	if name == "" {
		name = f.Default
	}

	if name == "" && len(f.Profiles) == 1 {
		for _, p := range f.Profiles {
			return p, nil
		}
	}

	if name == "" {
		return nil, errors.Mark(errors.New("no profile selected and no default set"), ErrInvalid)
	}

	p, ok := f.Profiles[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProfile, "%q", name)
	}

	return p, nil
}

func (f *File) validate() error {
	if len(f.Profiles) == 0 {
		return errors.New("at least one profile is required")
	}

	if f.Default != "" {
		if _, ok := f.Profiles[f.Default]; !ok {
			return errors.Newf("default profile %q is not defined", f.Default)
		}
	}

	for name, p := range f.Profiles {
		if p == nil {
			return errors.Newf("profile %q: empty", name)
		}
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "profile %q", name)
		}
	}

	return nil
}

// Validate checks a single profile.
func (p *Profile) Validate() error {
	if p.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if p.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if p.RateLimit < 0 {
		return errors.New("rate_limit must not be negative")
	}
	if p.Retry.Max < 0 {
		return errors.New("retry.max must not be negative")
	}
	if p.Retry.MaxWait > 0 && p.Retry.InitialWait > p.Retry.MaxWait {
		return errors.New("retry.initial_wait must be <= retry.max_wait")
	}

	if p.OAuth2 != nil {
		switch {
		case p.OAuth2.TokenURL == "":
			return errors.New("oauth2.token_url is required")
		case p.OAuth2.ClientID == "":
			return errors.New("oauth2.client_id is required")
		}
	}

	return nil
}
