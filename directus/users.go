package directus

import (
	"context"
	"errors"
	"net/http"
)

// UserInput is the payload for creating a user. Empty fields are omitted.
type UserInput struct {
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role,omitempty"`
	Status    string `json:"status,omitempty"`
}

// CreateUser creates a user and returns the stored record.
func (c *Client) CreateUser(ctx context.Context, in UserInput) (map[string]any, error) {
	if in.Email == "" {
		return nil, errors.New("directus: email is required")
	}
	var out struct {
		Data map[string]any `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/users", nil, in, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// InviteUser sends an invitation email. inviteURL overrides the accept page
// and must be allow-listed in the Directus configuration.
func (c *Client) InviteUser(ctx context.Context, email, role, inviteURL string) error {
	if email == "" {
		return errors.New("directus: email is required")
	}
	body := map[string]any{"email": email, "role": role}
	if inviteURL != "" {
		body["invite_url"] = inviteURL
	}
	return c.do(ctx, http.MethodPost, "/users/invite", nil, body, nil)
}
