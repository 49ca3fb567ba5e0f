package client

import "fmt"

// ConnectionError reports a network-level failure (DNS, connect,
// timeout) before any HTTP response was obtained. Status is synthetic:
// 504 for timeouts, 500 otherwise.
type ConnectionError struct {
	Status  int
	Message string
}

func (e *ConnectionError) Error() string { return e.Message }

// StatusCode returns the synthetic status carried by the error.
func (e *ConnectionError) StatusCode() int { return e.Status }

// TooManyRedirectsError reports that a request exceeded its redirect
// budget.
type TooManyRedirectsError struct {
	Status  int
	Message string
}

func (e *TooManyRedirectsError) Error() string { return e.Message }

// StatusCode returns the synthetic status carried by the error.
func (e *TooManyRedirectsError) StatusCode() int { return e.Status }

// RequestError is the generic fallback for transport failures that are
// neither connection-level nor redirect-loop related.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// StatusCode returns the synthetic status carried by the error.
func (e *RequestError) StatusCode() int { return e.Status }

// ClientError reports an HTTP response with a 4xx status when HTTP
// error raising is enabled. The parsed response rides along.
type ClientError struct {
	Status   int
	Message  string
	Response *Response
}

func (e *ClientError) Error() string { return e.Message }

// StatusCode returns the response status.
func (e *ClientError) StatusCode() int { return e.Status }

// ServerError reports an HTTP response with a 5xx status when HTTP
// error raising is enabled. The parsed response rides along.
type ServerError struct {
	Status   int
	Message  string
	Response *Response
}

func (e *ServerError) Error() string { return e.Message }

// StatusCode returns the response status.
func (e *ServerError) StatusCode() int { return e.Status }

// FileNotFoundError reports that a declared upload file path does not
// exist.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// classify turns a 4xx/5xx response into its typed error. Statuses
// outside [400,599] classify as nil.
func classify(resp *Response) error {
	switch {
	case resp.StatusCode >= 400 && resp.StatusCode <= 499:
		return &ClientError{Status: resp.StatusCode, Message: StatusMessage(resp.StatusCode), Response: resp}
	case resp.StatusCode >= 500 && resp.StatusCode <= 599:
		return &ServerError{Status: resp.StatusCode, Message: StatusMessage(resp.StatusCode), Response: resp}
	}
	return nil
}
