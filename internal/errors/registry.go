package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Directive Errors (E100-E199)
	// ============================================

	"E101": {
		Category: CategoryDirective,
		Message:  "Value is not valid for this primitive",
		DocURL:   "https://weft.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryDirective,
		Message:  "Directive type changed in a strict slot",
		DocURL:   "https://weft.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategoryDirective,
		Message:  "Directive used at an unsupported part",
		DocURL:   "https://weft.dev/docs/errors/E103",
	},
	"E105": {
		Category: CategoryDirective,
		Message:  "Duplicate key in a repeated list",
		DocURL:   "https://weft.dev/docs/errors/E105",
	},

	// ============================================
	// Hook Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryHook,
		Message:  "Hook order changed between renders",
		DocURL:   "https://weft.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategoryHook,
		Message:  "Hook called after the hook list was finalized",
		DocURL:   "https://weft.dev/docs/errors/E202",
	},
	"E203": {
		Category: CategoryHook,
		Message:  "Hook called outside of its component's render",
		DocURL:   "https://weft.dev/docs/errors/E203",
	},

	// ============================================
	// Template Errors (E300-E399)
	// ============================================

	"E301": {
		Category: CategoryTemplate,
		Message:  "Invalid template markup",
		DocURL:   "https://weft.dev/docs/errors/E301",
	},
	"E302": {
		Category: CategoryTemplate,
		Message:  "Template hole count does not match the bound values",
		DocURL:   "https://weft.dev/docs/errors/E302",
	},

	// ============================================
	// Hydration Errors (E400-E499)
	// ============================================

	"E401": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: node differs",
		DocURL:   "https://weft.dev/docs/errors/E401",
	},
	"E402": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: node missing",
		DocURL:   "https://weft.dev/docs/errors/E402",
	},
	"E403": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: text differs",
		DocURL:   "https://weft.dev/docs/errors/E403",
	},

	// ============================================
	// Render Errors (E500-E599)
	// ============================================

	"E501": {
		Category: CategoryRender,
		Message:  "Component render failed",
		DocURL:   "https://weft.dev/docs/errors/E501",
	},
	"E502": {
		Category: CategoryRender,
		Message:  "Root is not mounted",
		DocURL:   "https://weft.dev/docs/errors/E502",
	},

	// ============================================
	// Scheduler Errors (E600-E699)
	// ============================================

	"E601": {
		Category: CategoryScheduler,
		Message:  "Host callback failed",
		DocURL:   "https://weft.dev/docs/errors/E601",
	},

	// ============================================
	// Config Errors (E700-E799)
	// ============================================

	"E701": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		DocURL:   "https://weft.dev/docs/errors/E701",
	},
	"E702": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		DocURL:   "https://weft.dev/docs/errors/E702",
	},
	"E703": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		DocURL:   "https://weft.dev/docs/errors/E703",
	},

	// ============================================
	// CLI Errors (E800-E899)
	// ============================================

	"E801": {
		Category: CategoryCLI,
		Message:  "Invalid render data",
		DocURL:   "https://weft.dev/docs/errors/E801",
	},
	"E802": {
		Category: CategoryCLI,
		Message:  "Publish failed",
		DocURL:   "https://weft.dev/docs/errors/E802",
	},
	"E803": {
		Category: CategoryCLI,
		Message:  "Page not found",
		DocURL:   "https://weft.dev/docs/errors/E803",
	},
	"E804": {
		Category: CategoryCLI,
		Message:  "Unknown project template",
		DocURL:   "https://weft.dev/docs/errors/E804",
	},
	"E805": {
		Category: CategoryCLI,
		Message:  "Project already exists",
		DocURL:   "https://weft.dev/docs/errors/E805",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
