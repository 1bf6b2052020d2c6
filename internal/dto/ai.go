package dto

// ExplainRequest asks for a short explanation of a project.
type ExplainRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Materials   []string `json:"materials"`
	Language    string   `json:"language"`
}

// ExplainResponse wraps the generated or canned explanation.
type ExplainResponse struct {
	Explanation string `json:"explanation"`
}

// ChatRequest is a single assistant chat turn.
type ChatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

// ChatResponse wraps the assistant reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}
