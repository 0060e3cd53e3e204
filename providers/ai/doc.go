// Package ai defines the provider-agnostic chat types and the [Provider]
// interface implemented by completion backends. Each provider's conversion
// layer maps [ChatRequest] and [ChatResponse] to its own wire format, keeping
// the extraction pipeline decoupled from provider-specific details.
package ai
