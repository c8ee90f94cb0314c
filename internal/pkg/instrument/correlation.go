package instrument

import "context"

type correlationKey struct{}

// SetCorrelationID returns a child context carrying the request correlation ID.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// GetCorrelationID returns the correlation ID stored in ctx, or "".
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
