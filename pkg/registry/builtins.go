package registry

import (
	_ "embed"
	"slices"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

//go:embed builtins.json
var builtinsJSON []byte

// Builtin describes a standard HTML element.
type Builtin struct {
	Tag            string `json:"tag"`
	Interface      string `json:"interface"`
	Void           bool   `json:"void,omitempty"`
	FormAssociated bool   `json:"formAssociated,omitempty"`
	Interactive    bool   `json:"interactive,omitempty"`
}

type builtinManifest struct {
	Version  int       `json:"version"`
	Elements []Builtin `json:"elements"`
}

var loadBuiltins = sync.OnceValue(func() map[string]Builtin {
	var manifest builtinManifest
	if err := jsoniter.Unmarshal(builtinsJSON, &manifest); err != nil {
		panic("registry: invalid embedded builtin catalogue: " + err.Error())
	}
	m := make(map[string]Builtin, len(manifest.Elements))
	for _, b := range manifest.Elements {
		m[b.Tag] = b
	}
	return m
})

// LookupBuiltin returns the catalogue entry for a standard element.
func LookupBuiltin(tag string) (Builtin, bool) {
	b, ok := loadBuiltins()[tag]
	return b, ok
}

// Builtins returns the whole catalogue sorted by tag.
func Builtins() []Builtin {
	m := loadBuiltins()
	out := make([]Builtin, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Builtin) int {
		switch {
		case a.Tag < b.Tag:
			return -1
		case a.Tag > b.Tag:
			return 1
		}
		return 0
	})
	return out
}
