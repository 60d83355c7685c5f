package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates. It is read-only after init.
var registry = map[string]Template{
	// ============================================
	// Validation Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryValidation,
		Message:  "Unsafe style rejected",
		Detail:   "The inline style contains a script, URL scheme, event handler or data URL pattern and was dropped.",
	},
	"E101": {
		Category: CategoryValidation,
		Message:  "Unsafe URL rejected",
		Detail:   "The URL uses a disallowed scheme or host and was dropped.",
	},
	"E102": {
		Category: CategoryValidation,
		Message:  "Data attribute rejected",
		Detail:   "The data-* key or value failed sanitization and was dropped.",
	},
	"E103": {
		Category: CategoryValidation,
		Message:  "Attribute name rejected",
		Detail:   "Attribute names must be plain identifiers; inline on* handlers are not allowed, use BindAction instead.",
	},
	"E104": {
		Category: CategoryValidation,
		Message:  "CSS token rejected",
		Detail:   "The value is not a single safe CSS token.",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Unknown layout value, using default",
		Detail:   "A layout enum was not found in its token table and the documented default was applied.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be parsed.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Configuration not found",
		Detail:   "No tessera.json or tessera.yaml was found.",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range.",
	},

	// ============================================
	// Structure Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryStructure,
		Message:  "Depth limit exceeded",
		Detail:   "Deferred blocks are nested deeper than render.maxDepth allows.",
	},

	// ============================================
	// Render Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryRender,
		Message:  "Invalid tag name",
		Detail:   "Tag names must start with a letter and contain only letters, digits and dashes.",
	},
	"E161": {
		Category: CategoryRender,
		Message:  "Block failed",
		Detail:   "A deferred child block reported a failure. The block's own error is returned.",
	},
	"E162": {
		Category: CategoryRender,
		Message:  "Unknown node kind",
		Detail:   "The node has an internal kind the serializer does not know.",
	},

	// ============================================
	// Export & CLI Errors (E180-E199)
	// ============================================

	"E180": {
		Category: CategoryExport,
		Message:  "Export failed",
		Detail:   "A rendered page could not be written to the export sink.",
	},
	"E181": {
		Category: CategoryExport,
		Message:  "Invalid export path",
		Detail:   "Export paths must be relative and stay inside the export root.",
	},
	"E200": {
		Category: CategoryCLI,
		Message:  "Tree document not found",
		Detail:   "The tree document path does not exist.",
	},
	"E201": {
		Category: CategoryCLI,
		Message:  "Invalid tree document",
		Detail:   "The tree document does not describe a valid node tree.",
	},
	"E202": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Detail:   "A command-line flag or argument has a value the command does not accept.",
	},
}

// Codes returns the registered error codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
