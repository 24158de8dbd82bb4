package h2mux

import "github.com/valyala/fasthttp"

// Logger is the debug-logging hook, a direct alias of fasthttp.Logger so
// callers already holding a *fasthttp.Server's logger (or anything else
// satisfying that interface) can pass it straight into SetLogger,
// matching the donor's own `logger fasthttp.Logger` field in
// serverConn.go.
type Logger = fasthttp.Logger

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}
