package ollama

// Message is a single chat message sent to /api/chat.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options carries model parameters for inference.
type Options struct {
	Temperature float64 `json:"temperature"`
}

// chatRequest is the request body for the /api/chat endpoint.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *Options  `json:"options,omitempty"`
}

// chatResponse is the non-streaming response from /api/chat.
type chatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// chatChunk is one line of a streaming /api/chat response.
type chatChunk struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

// ollamaError is the error envelope Ollama returns on non-200 responses.
type ollamaError struct {
	Error string `json:"error"`
}

// ModelInfo describes one locally available model.
type ModelInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
}

// listModelsResponse is the response from /api/tags.
type listModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// Request is a single generation request. Every request is fresh; the client
// never caches responses, since a stale answer under a different context
// bundle would be wrong.
type Request struct {
	Model       string
	Prompt      string
	System      string
	Temperature float64
	Stream      bool

	// OnChunk, when set on a streaming request, receives each raw partial
	// chunk in arrival order. It is display-only: downstream consumers always
	// get the fully concatenated text.
	OnChunk func(text string)
}

// Response is the complete generation result. For streaming requests the
// content is the concatenation of all chunks in arrival order.
type Response struct {
	Model   string
	Content string
}
