package client

import (
	"context"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token and installs it on the
// session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	const op = "login"
	var resp tokenResponse
	if err := c.postJSON(ctx, op, "/api/auth/login/", loginRequest{Email: email, Password: password}, &resp, false); err != nil {
		return err
	}
	if err := c.session.SetToken(resp.Token); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}
	return nil
}

// RegisterInput holds the signup form.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=staff approver1 approver2 finance"`
}

// Register creates an account. It does not log in; call Login afterwards.
func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	const op = "register"
	if err := validate.Struct(in); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}
	return c.postJSON(ctx, op, "/api/auth/register/", in, nil, false)
}

// Logout clears the local session. The token is stateless, so there is
// nothing to revoke server-side.
func (c *Client) Logout() {
	c.session.Clear()
}
