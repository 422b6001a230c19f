package model

// GraphQLRequest is the JSON body accepted by the /graphql endpoint.
type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// APIResponse is the envelope used for non-GraphQL failures (rate limiting,
// panics, timeouts) so every error body carries an errors[] array.
type APIResponse struct {
	Data   any        `json:"data,omitempty"`
	Errors []APIError `json:"errors,omitempty"`
}

type APIError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func ErrorResponse(code string, message string) APIResponse {
	return APIResponse{Errors: []APIError{{
		Message:    message,
		Extensions: map[string]any{"code": code},
	}}}
}
