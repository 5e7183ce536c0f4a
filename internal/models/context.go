package models

import "context"

type requestMetaKey struct{}

// RequestMeta carries the caller details the audit log records alongside an
// action. The identity layer that authenticated the request fills it in.
type RequestMeta struct {
	Channel   string // e.g. "web", "cli"
	Url       string
	Device    string // user agent
	IpAddress string
}

// WithRequestMeta attaches request metadata to a context.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// GetRequestMeta retrieves request metadata from context. The zero value is
// returned when nothing was attached.
func GetRequestMeta(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}
