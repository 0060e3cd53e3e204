// Package extract turns free text into a validated intake record by asking a
// [Completer] for JSON and retrying a bounded number of times.
//
// Each attempt is independent: the prompt is rebuilt from the source text, the
// completion is located, decoded, normalized and validated, and the first
// valid record ends the loop. Only the last failure survives the loop, and it
// is returned inside an [ExhaustedError] once every attempt has failed.
//
//	c, _ := client.New(openai.New(), client.WithMiddleware(middleware.NewTimeoutMiddleware(30*time.Second)))
//	record, err := extract.New(c).Extract(ctx, "My name is Ana, 30, I do not smoke...")
//	var exhausted *extract.ExhaustedError
//	if errors.As(err, &exhausted) {
//	    fmt.Println(exhausted.Last)
//	}
package extract
