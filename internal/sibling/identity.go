package sibling

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"DatasetCatalog/internal/apperr"
	"DatasetCatalog/internal/auth"

	"github.com/mitchellh/mapstructure"
)

const serviceUser = "user"

// UserIDsByRole lists the ids of every identity holding role.
func (c *Client) UserIDsByRole(ctx context.Context, role string) ([]string, error) {
	var doc struct {
		Data []string `json:"data"`
	}
	path := "/v1/user/ids/" + url.PathEscape(role)
	if err := c.do(ctx, serviceUser, http.MethodGet, path, nil, nil, &doc); err != nil {
		return nil, err
	}
	if doc.Data == nil {
		return []string{}, nil
	}
	return doc.Data, nil
}

// FindUsers resolves identity records; unknown ids are simply absent.
func (c *Client) FindUsers(ctx context.Context, ids []string) ([]auth.User, error) {
	envs, err := c.FindByIDs(ctx, serviceUser, ids, Filter{})
	if err != nil {
		return nil, err
	}
	users := make([]auth.User, 0, len(envs))
	for _, e := range envs {
		u, err := DecodeUser(e)
		if err != nil {
			return nil, apperr.Upstream(serviceUser, err)
		}
		users = append(users, u)
	}
	return users, nil
}

// DecodeUser reads an identity record out of an envelope.
func DecodeUser(e Envelope) (auth.User, error) {
	var u auth.User
	if err := mapstructure.WeakDecode(e.Attributes, &u); err != nil {
		return auth.User{}, fmt.Errorf("malformed user %q: %w", e.ID, err)
	}
	if e.ID != "" {
		u.ID = e.ID
	}
	return u, nil
}
