package twilio

import "fmt"

// MessageResult is the subset of the Messages API response we care about.
type MessageResult struct {
	SID         string `json:"sid"`
	Status      string `json:"status"`
	To          string `json:"to"`
	From        string `json:"from"`
	ErrorCode   *int   `json:"error_code"`
	ErrorMsg    string `json:"error_message"`
	NumSegments string `json:"num_segments"`
}

// APIError is a non-2xx response from the Twilio REST API.
type APIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twilio API error %d (http %d): %s", e.Code, e.Status, e.Message)
}
