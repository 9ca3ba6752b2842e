package gemini_client

const (
	BaseURL = "https://generativelanguage.googleapis.com/v1beta/"

	DefaultModel = "gemini-2.0-flash"

	// Paths
	generateContentPath = "models/%s:generateContent"

	// Headers - the API key travels in a header rather than the query string
	APIKeyHeader    = "x-goog-api-key"
	JsonHeader      = "Content-Type"
	JsonContentType = "application/json"
)
