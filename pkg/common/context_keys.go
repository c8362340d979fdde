package common

type contextKey string

const (
	TraceIdKey   contextKey = "trace_id"
	LatencyKey   contextKey = "__execution_time"
	OriginKey    contextKey = "request_origin"
	PreflightKey contextKey = "is_preflight"
)
