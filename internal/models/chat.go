package models

// ChatRequest is the body of POST /api/chat. Message is a pointer so that an
// absent or null value can be told apart from an empty string.
type ChatRequest struct {
	Message *string `json:"message" validate:"required"`
	Context *string `json:"context"`
}

type ChatResponse struct {
	Response string  `json:"response"`
	Context  *string `json:"context"`
}

type RootResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries either a string or a list of FieldError in Detail.
type ErrorResponse struct {
	Detail any `json:"detail"`
}

type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}
