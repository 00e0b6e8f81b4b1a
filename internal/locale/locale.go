// Package locale maps stable error codes to user-facing messages.
// Codes are the API contract; the texts here are presentation only.
package locale

// DefaultLocale is used when a requested locale has no catalog.
const DefaultLocale = "en-MY"

var catalogs = map[string]map[string]string{
	"en-MY": {
		"INTERNAL_SERVER_ERROR":       "Internal server error.",
		"UNABLE_GET_TASKS":            "Unable to get tasks, please try again",
		"UNABLE_GET_TASK":             "Unable to get task, please try again",
		"UNABLE_DELETE_TASKS":         "Unable to delete tasks, please try again",
		"UNABLE_CREATE_TASK":          "Unable to create task, please try again",
		"UNABLE_UPDATE_TASK":          "Unable to update task, please try again",
		"UNABLE_DELETE_TASK":          "Unable to delete task, please try again",
		"MISSING_TASK_NAME":           "Missing task name",
		"UNABLE_GET_CONFIGURATIONS":   "Unable to get configurations, please try again",
		"UNABLE_GET_CONFIGURATION":    "Unable to get configuration, please try again",
		"UNABLE_UPDATE_CONFIGURATION": "Unable to update configuration, please try again",
		"CONFIGURATION_NOT_EDITABLE":  "This configuration cannot be changed",
		"INVALID_SORT_COLUMN":         "Invalid sort column",
	},
}

// Translate resolves a code in the given locale, falling back to the
// default locale and then to the internal-error message. Unknown codes
// never leak through as raw text.
func Translate(loc, code string) string {
	catalog, ok := catalogs[loc]
	if !ok {
		catalog = catalogs[DefaultLocale]
	}
	if msg, ok := catalog[code]; ok {
		return msg
	}
	return catalog["INTERNAL_SERVER_ERROR"]
}

// Known reports whether a code exists in the default catalog.
func Known(code string) bool {
	_, ok := catalogs[DefaultLocale][code]
	return ok
}
