package box

import "fmt"

type User struct {
	Type  string `json:"type"`
	Id    string `json:"id"`
	Name  string `json:"name"`
	Login string `json:"login"`
}

// APIError is the error body Box returns with any non-2xx response.
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestId  string `json:"request_id"`
}

func (e *APIError) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("box: bad status: %d", e.StatusCode)
	}
	return fmt.Sprintf("box: %d %s: %s (request %s)", e.StatusCode, e.Code, e.Message, e.RequestId)
}
