package authority

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/rbmarquez/doctorq/pkg/config"
)

// TokenSource builds the bearer token source described by cfg: a client
// credentials grant when configured, a static token otherwise. It returns nil
// when the authority needs no authentication.
func TokenSource(ctx context.Context, cfg config.Authority) oauth2.TokenSource {
	switch {
	case cfg.UsesClientCredentials():
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		return cc.TokenSource(ctx)
	case cfg.Token != "":
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
	default:
		return nil
	}
}

// NewClientFromConfig creates a client from the Authority configuration section.
// Extra options are applied after the configured ones.
func NewClientFromConfig(ctx context.Context, cfg config.Authority, opts ...Option) (*Client, error) {
	base := []Option{WithTimeout(cfg.Timeout)}
	if ts := TokenSource(ctx, cfg); ts != nil {
		base = append(base, WithTokenSource(ts))
	}
	return NewClient(cfg.URL, append(base, opts...)...)
}
