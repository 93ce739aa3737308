// Package events provides the event object and listener bookkeeping used by
// elements.
//
// Listeners are registered on a Target, either for the host itself (empty
// selector) or delegated to rendered descendants matching a CSS selector.
// Dispatch walks the event path from the target node to the host and runs
// every matching listener in registration order:
//
//	d, err := target.Delegate("click", "button.save", func(ctx context.Context, e *events.Event, node *vdom.VNode) (any, error) {
//	    return nil, save(ctx)
//	}, events.Options{})
//
// A failing listener never prevents the others from running. All failures
// of one dispatch are joined into a single listener error.
//
// DispatchAsync additionally awaits handler results that implement
// Awaitable, concurrently, and returns every result in invocation order.
package events
