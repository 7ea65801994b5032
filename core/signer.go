package core

import (
	"context"
	"strings"
)

// TokenSource returns the access token used by BearerTokenDelegate.
type TokenSource func(ctx context.Context) (string, error)

// BearerTokenDelegate authorizes requests with "Bearer <token>".
type BearerTokenDelegate struct {
	Source TokenSource
}

func (d BearerTokenDelegate) Sign(ctx context.Context, req SignRequest) (string, error) {
	if d.Source == nil {
		return "", badInputError("core: bearer token source is required", nil)
	}
	token, err := d.Source(ctx)
	if err != nil {
		return "", err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", badInputError("core: access token is required for bearer signing", map[string]any{
			"url":    req.URL,
			"method": req.Method,
		})
	}
	return "Bearer " + token, nil
}

// StaticHeaderDelegate returns the same header value for every request.
type StaticHeaderDelegate string

func (d StaticHeaderDelegate) Sign(context.Context, SignRequest) (string, error) {
	return string(d), nil
}

var (
	_ SigningDelegate = BearerTokenDelegate{}
	_ SigningDelegate = StaticHeaderDelegate("")
	_ SigningDelegate = SigningDelegateFunc(nil)
)
