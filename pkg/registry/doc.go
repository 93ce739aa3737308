// Package registry maps custom element tag names to their definitions.
//
// A Registry is an explicit object created at setup and passed to
// whatever hosts elements; there is no package-level instance.
//
//	reg := registry.New()
//	if err := reg.Define(counter); err != nil {
//	    return err
//	}
//	el, err := reg.Create("x-counter")
//
// The package also carries the builtin catalogue: every standard HTML
// element with its DOM interface name and capability flags. Definitions
// that customize a builtin name it in Definition.Extends.
package registry
