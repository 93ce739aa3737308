// Package property implements the per-element property store.
//
// Each element type declares its properties once, as a list of Spec values.
// Every element instance owns one Store holding the current values and the
// observers registered against them.
//
//	store, err := property.NewStore([]property.Spec{
//	    {Name: "count", Type: property.Int, Attribute: "count"},
//	})
//	obs := property.NewObserver(func(c property.Change) {
//	    fmt.Println(c.Name, c.Old, "->", c.New)
//	})
//	store.Observe("count", obs)
//	store.Set("count", 1) // prints: count 0 -> 1
//
// Set compares the new value with the current one using the Spec's
// equality rule and does nothing when they are equal. Observers fire in
// registration order; registering the same observer twice has no effect.
//
// A Store is not safe for concurrent use. It belongs to exactly one
// element and is driven from that element's goroutine.
package property
