// Package overview tracks the lifecycle of a single extraction run: how many
// model calls it made, the tokens they consumed, how each attempt ended and
// how long the run took.
//
// The central type is [Overview]. Callers bind one to a context with
// [Overview.ToContext]; the chat client and the extractor record into
// whatever overview [OverviewFromContext] finds there.
package overview
