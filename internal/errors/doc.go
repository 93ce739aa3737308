// Package errors provides structured, actionable error values for DNA.
//
// Every failure the runtime reports is a *DNAError carrying a stable code
// (e.g. "E001") that maps to a registered category, message and
// documentation link. Callers branch on the code or the category rather
// than on message text:
//
//	if errors.IsCode(err, errors.CodeInvalidProperty) {
//	    // caller asked for a property the element does not declare
//	}
//
// # Categories
//
//   - usage: the caller broke the API contract (undeclared property,
//     bad attribute value, lifecycle misuse). Not recoverable by retrying.
//   - invariant: the runtime detected a broken internal invariant such as
//     an unbalanced CollectUpdatesEnd. These are fatal.
//   - render: a Render slot or the reconciliation step failed.
//   - listener: one or more event listeners failed; the individual
//     failures are wrapped.
//   - definition: an element definition was rejected by the registry.
//   - config, protocol, runtime: configuration, wire and scheduler errors.
//
// # Formatting
//
// Format renders an error for terminals:
//
//	ERROR E002: Unbalanced CollectUpdatesEnd
//
//	  CollectUpdatesEnd was called more times than CollectUpdatesStart.
//
//	  Hint: pair every CollectUpdatesStart with exactly one CollectUpdatesEnd
package errors
