// Package client turns an [ai.Provider] into a prompt-in, text-out completer.
// Each call sends a single user message; no conversation state is kept
// between calls, so every extraction attempt is independent.
//
// Cross-cutting behaviour (timeouts, transport retries, logging) is layered
// on with [WithMiddleware]; see the middleware sub-package.
package client
