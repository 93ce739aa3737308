package errors

// Registered error codes.
const (
	CodeInvalidProperty   = "E001"
	CodeUnbalancedCollect = "E002"
	CodeRenderFailed      = "E003"
	CodeReconcileFailed   = "E004"
	CodeListenerFailed    = "E005"
	CodeUpdateStorm       = "E006"
	CodeInvalidTagName    = "E007"
	CodeAlreadyDefined    = "E008"
	CodeUnknownBase       = "E009"
	CodeAttributeCast     = "E010"
	CodeLifecycle         = "E011"
	CodeInvalidSelector   = "E012"
	CodeConfigRead        = "E020"
	CodeConfigInvalid     = "E021"
	CodeMalformedFrame    = "E030"
	CodeUnknownElement    = "E031"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Element runtime (E001-E019)
	// ============================================

	CodeInvalidProperty: {
		Category:   CategoryUsage,
		Message:    "Undeclared property",
		Detail:     "The element type does not declare a property with this name. Properties are declared once per element type in its Definition.",
		Suggestion: "add a property.Spec for the name to Definition.Properties",
		DocURL:     "https://dna.dev/docs/errors/E001",
	},
	CodeUnbalancedCollect: {
		Category:   CategoryInvariant,
		Message:    "Unbalanced CollectUpdatesEnd",
		Detail:     "CollectUpdatesEnd was called more times than CollectUpdatesStart. The collecting depth can never go below zero.",
		Suggestion: "pair every CollectUpdatesStart with exactly one CollectUpdatesEnd",
		DocURL:     "https://dna.dev/docs/errors/E002",
	},
	CodeRenderFailed: {
		Category: CategoryRender,
		Message:  "Render failed",
		Detail:   "The element's Render callback returned an error. The rendered tree was left untouched and the update is not retried.",
		DocURL:   "https://dna.dev/docs/errors/E003",
	},
	CodeReconcileFailed: {
		Category: CategoryRender,
		Message:  "Reconciliation failed",
		Detail:   "The realm could not apply the rendered tree to its target.",
		DocURL:   "https://dna.dev/docs/errors/E004",
	},
	CodeListenerFailed: {
		Category: CategoryListener,
		Message:  "Event listener failed",
		Detail:   "One or more listeners returned an error. Every listener for the event still ran; the individual failures are wrapped.",
		DocURL:   "https://dna.dev/docs/errors/E005",
	},
	CodeUpdateStorm: {
		Category:   CategoryRuntime,
		Message:    "Update storm",
		Detail:     "Render cycles kept requesting further updates past the configured pass limit.",
		Suggestion: "avoid setting properties from Updated unconditionally",
		DocURL:     "https://dna.dev/docs/errors/E006",
	},

	// ============================================
	// Definitions (E007-E009)
	// ============================================

	CodeInvalidTagName: {
		Category:   CategoryDefinition,
		Message:    "Invalid custom element name",
		Detail:     "Custom element names must start with a lowercase ASCII letter, contain a hyphen and contain no uppercase letters.",
		Suggestion: "use a name such as \"x-counter\"",
		DocURL:     "https://dna.dev/docs/errors/E007",
	},
	CodeAlreadyDefined: {
		Category: CategoryDefinition,
		Message:  "Element already defined",
		Detail:   "A definition for this tag name is already registered in this registry.",
		DocURL:   "https://dna.dev/docs/errors/E008",
	},
	CodeUnknownBase: {
		Category: CategoryDefinition,
		Message:  "Unknown builtin base element",
		Detail:   "Definition.Extends must name a standard HTML element from the builtin catalogue.",
		DocURL:   "https://dna.dev/docs/errors/E009",
	},

	// ============================================
	// Usage (E010-E019)
	// ============================================

	CodeAttributeCast: {
		Category: CategoryUsage,
		Message:  "Attribute value cannot be converted",
		Detail:   "The attribute value does not parse as the property's declared type.",
		DocURL:   "https://dna.dev/docs/errors/E010",
	},
	CodeLifecycle: {
		Category: CategoryUsage,
		Message:  "Lifecycle misuse",
		Detail:   "Initialize runs exactly once, before the element is first connected.",
		DocURL:   "https://dna.dev/docs/errors/E011",
	},
	CodeInvalidSelector: {
		Category: CategoryUsage,
		Message:  "Invalid selector",
		Detail:   "Delegation selectors support type, #id, .class and [attr] selectors joined by descendant or child combinators.",
		DocURL:   "https://dna.dev/docs/errors/E012",
	},

	// ============================================
	// Config (E020-E029)
	// ============================================

	CodeConfigRead: {
		Category: CategoryConfig,
		Message:  "Cannot read configuration",
		DocURL:   "https://dna.dev/docs/errors/E020",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		DocURL:   "https://dna.dev/docs/errors/E021",
	},

	// ============================================
	// Protocol (E030-E039)
	// ============================================

	CodeMalformedFrame: {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
		DocURL:   "https://dna.dev/docs/errors/E030",
	},
	CodeUnknownElement: {
		Category: CategoryProtocol,
		Message:  "Unknown element",
		Detail:   "No element definition is registered for the requested tag.",
		DocURL:   "https://dna.dev/docs/errors/E031",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
