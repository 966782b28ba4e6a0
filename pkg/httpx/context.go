package httpx

import "context"

type ctxKey string

// CtxKeyPrincipal holds the name of the authenticated caller, if any.
const CtxKeyPrincipal ctxKey = "principal"

// PrincipalFromContext returns the authenticated caller set by RequireBearerToken.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(CtxKeyPrincipal).(string)
	return p, ok && p != ""
}

func contextWithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, CtxKeyPrincipal, principal)
}
