// Package preview runs the image reference pipeline: find the reference under
// a cursor, resolve it to a locator, fetch its bytes and decode them.
//
//	ref, ok := engine.Find(line, cursor, sourcePath)
//	locator, err := engine.Resolve(ctx, ref)
//	result, err := engine.Fetch(ctx, ref, locator)
//
// Lookup chains the three steps. Failures never panic and never abort a
// caller: a reference that was found but could not be resolved, fetched or
// decoded is still returned, together with an error wrapping ErrUnresolved,
// ErrFetch or ErrDecode. Only the absence of a reference is ErrNoMatch.
//
// Each call is independent. Nothing is cached between calls and concurrent
// lookups of the same reference are not deduplicated.
package preview
