// Package response holds the wire shapes the stub server emits, matching the
// production backend: errors carry a detail message, lists may be wrapped in
// a count/results envelope.
package response

// ErrorBody is the error payload, e.g. {"detail": "Not found."}.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// Error wraps a message in the standard error shape.
func Error(detail string) ErrorBody {
	return ErrorBody{Detail: detail}
}

// ListEnvelope is the paginated list shape.
type ListEnvelope struct {
	Count   int         `json:"count"`
	Results interface{} `json:"results"`
}

// List wraps results in the pagination envelope.
func List(count int, results interface{}) ListEnvelope {
	return ListEnvelope{Count: count, Results: results}
}
