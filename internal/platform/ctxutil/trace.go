package ctxutil

import "context"

type traceDataKey struct{}
type clientDataKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// ClientData identifies the browser profile a request belongs to.
type ClientData struct {
	ClientID string
}

func WithClientData(ctx context.Context, cd *ClientData) context.Context {
	return context.WithValue(ctx, clientDataKey{}, cd)
}

func GetClientData(ctx context.Context) *ClientData {
	if cd, ok := ctx.Value(clientDataKey{}).(*ClientData); ok {
		return cd
	}
	return nil
}
