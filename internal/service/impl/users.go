package core

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/client"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/validate"
)

func (s *AppService) SearchUsers(ctx context.Context, q string) (users []domain.User, err error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < s.MinSearchLength {
		log.Debug().Str("query", q).Msg("search query too short, skipping request")
		return []domain.User{}, nil
	}

	err = s.Client.Get(ctx, "/users/search", &users, client.WithQuery(url.Values{"q": {q}}))
	return
}

func (s *AppService) ImportCharacter(ctx context.Context, req domain.ImportRequest) (c domain.Character, err error) {
	req.CharacterURL = strings.TrimSpace(req.CharacterURL)
	if err = validate.Struct(req); err != nil {
		return
	}
	err = s.Client.Post(ctx, "/dndbeyond/import", req, &c)
	return
}
