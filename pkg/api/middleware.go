package routing

import (
	"net/http"
	"slices"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ReloadScope grants reloading the catalogue.
const ReloadScope = "catalogue:reload"

// tokenClaims carries the granted scopes as a space separated list.
type tokenClaims struct {
	jwt.RegisteredClaims

	Scope string `json:"scope"`
}

func (c *tokenClaims) grants(anyOf []string) bool {
	if len(anyOf) == 0 {
		return true
	}
	granted := strings.Fields(c.Scope)
	for _, s := range anyOf {
		if slices.Contains(granted, s) {
			return true
		}
	}
	return false
}

// requiredScopes returns the scopes of the bearerAuth requirement of op, of
// which a token needs any one.
func requiredScopes(op *huma.Operation) ([]string, bool) {
	if op == nil {
		return nil, false
	}
	for _, req := range op.Security {
		if scopes, ok := req["bearerAuth"]; ok {
			return scopes, true
		}
	}
	return nil, false
}

// authMiddleware checks the bearer token of the operations secured with
// bearerAuth: a valid HMAC signed token is required, granting one of the
// scopes the operation lists. An empty secret leaves them open.
func authMiddleware(api huma.API, secret string) func(ctx huma.Context, next func(huma.Context)) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	key := func(*jwt.Token) (any, error) { return []byte(secret), nil }

	return func(ctx huma.Context, next func(huma.Context)) {
		scopes, secured := requiredScopes(ctx.Operation())
		if !secured || secret == "" {
			next(ctx)
			return
		}

		raw, ok := strings.CutPrefix(ctx.Header("Authorization"), "Bearer ")
		if !ok || raw == "" {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims := &tokenClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, key); err != nil {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid token", err)
			return
		}
		if !claims.grants(scopes) {
			huma.WriteErr(api, ctx, http.StatusForbidden, "token lacks scope "+strings.Join(scopes, " or "))
			return
		}

		next(ctx)
	}
}
