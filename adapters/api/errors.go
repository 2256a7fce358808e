package api

import (
	"fmt"
	"strings"

	"claimsportal/internal/errors"

	"github.com/tidwall/gjson"
)

// HTTPError is returned for any non-2xx backend response.
// Message is what the user is shown.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error"
	}
	return e.Message
}

// parseHTTPError derives the user-facing message: the body's "detail" field when the body is JSON
// and carries one, else the raw body text, else a generic status message.
func parseHTTPError(status int, raw []byte) *HTTPError {
	body := strings.TrimSpace(string(raw))
	msg := detailMessage(raw)
	if msg == "" {
		msg = body
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP Error %d", status)
	}
	return &HTTPError{StatusCode: status, Message: msg, Body: body}
}

func detailMessage(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	detail := gjson.GetBytes(raw, "detail")
	switch {
	case !detail.Exists():
		return ""
	case detail.IsArray():
		// request validation failures: [{"loc": [...], "msg": "...", "type": "..."}]
		var msgs []string
		detail.ForEach(func(_, item gjson.Result) bool {
			if m := item.Get("msg"); m.Exists() {
				msgs = append(msgs, m.String())
			} else {
				msgs = append(msgs, item.String())
			}
			return true
		})
		return strings.Join(msgs, "; ")
	case detail.IsObject():
		if m := detail.Get("msg"); m.Exists() {
			return m.String()
		}
		return detail.Raw
	default:
		return strings.TrimSpace(detail.String())
	}
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an HTTPError
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// Message returns the user-facing text for any client error
func Message(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
