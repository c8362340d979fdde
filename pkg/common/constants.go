package common

const (
	RequestIdHeader = "X-Request-Id"
)
