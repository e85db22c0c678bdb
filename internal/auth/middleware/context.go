package auth

import "context"

type tokenIDKey struct{}

// WithTokenID stores the id of a verified form token.
func WithTokenID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tokenIDKey{}, id)
}

// TokenIDFromContext is empty outside RequireFormToken.
func TokenIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(tokenIDKey{}).(string)
	return id
}
