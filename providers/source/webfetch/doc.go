// Package webfetch retrieves an intake document published as a web page
// (a referral letter, a pre-registration form) and converts its HTML to
// markdown before it is placed in the extraction prompt.
//
// [Fetcher] implements the form package's Fetcher interface, so it can be
// passed to form.WithFetcher to enable URL sources.
package webfetch
