package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// UI - Sidebar
	"sidebar.sessions": "Sessions",
	"sidebar.model":    "Model",
	"sidebar.variant":  "Workspace",

	// UI - Status bar
	"status.ready":     "Ready",
	"status.streaming": "Streaming...",
	"status.sending":   "Sending...",

	// UI - Input
	"input.placeholder": "Type a message... (Shift+Enter for newline)",

	// UI - Session actions
	"session.new":            "new session",
	"session.confirm_delete": "Delete session %q? [y/N]",
	"session.deleted":        "Session deleted",

	// Workspace variants
	"variant.chat":    "chat",
	"variant.builder": "plugin builder",

	// Builder
	"builder.greeting":      "Hi! Tell me what your plugin should do and I'll generate the code.",
	"builder.code_marker":   "[code updated — see the Code panel]",
	"builder.name_required": "Please name your plugin first (use /name) before we start building.",

	// Errors
	"error.remote":         "Sorry, something went wrong talking to the model: %v",
	"error.no_credential":  "No API key configured. Set provider.api_key or export WORKBENCH_API_KEY.",
	"error.session_exists": "session %s already exists",
}
