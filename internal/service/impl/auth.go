package core

import (
	"context"
	"net/url"
	"strings"

	"github.com/sidereusnuntius/tabletop/internal/client"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/validate"
)

// Login exchanges credentials for an access token. The token endpoint is OAuth2 style and takes a form body.
func (s *AppService) Login(ctx context.Context, creds domain.Credentials) (token domain.Token, err error) {
	if err = validate.Credentials(creds); err != nil {
		return
	}

	form := url.Values{
		"username": {strings.TrimSpace(creds.Username)},
		"password": {creds.Password},
	}
	err = s.Client.Post(ctx, "/auth/login", nil, &token, client.WithForm(form), client.WithBearer(""))
	return
}

func (s *AppService) Register(ctx context.Context, reg domain.Registration) (u domain.User, err error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	if err = validate.SignUpForm(reg); err != nil {
		return
	}

	err = s.Client.Post(ctx, "/auth/register", reg, &u, client.WithBearer(""))
	return
}

func (s *AppService) Me(ctx context.Context, token string) (u domain.User, err error) {
	var opts []client.RequestOption
	if token != "" {
		opts = append(opts, client.WithBearer(token))
	}
	err = s.Client.Get(ctx, "/users/me", &u, opts...)
	return
}
