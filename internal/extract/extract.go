// Package extract reduces a fetched Gmail message to a flat Summary.
package extract

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/joshsymonds/hourwatch/internal/gmail"
)

const (
	// NotAvailable stands in for a missing header.
	NotAvailable = "N/A"
	// Undecodable replaces a body whose data is not valid base64url UTF-8 text.
	Undecodable = "Unable to decode"
	// NoBody is returned when a part has neither nested parts nor data.
	NoBody = "No body"
	// MaxBodyChars caps Summary.Body, counted in characters.
	MaxBodyChars = 500
)

// Summary is the normalized view of one message. Every field is always set.
type Summary struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Date    string `json:"date"`
}

// Summarize builds a Summary from the top-level payload of msg.
func Summarize(msg gmail.Message) Summary {
	headers := msg.Payload.Headers
	return Summary{
		ID:      string(msg.ID),
		From:    Header(headers, "From"),
		Subject: Header(headers, "Subject"),
		Body:    Truncate(Body(msg.Payload), MaxBodyChars),
		Date:    Header(headers, "Date"),
	}
}

// Header returns the value of the first header named exactly name.
func Header(headers []gmail.Header, name string) string {
	for _, h := range headers {
		if h.Name == name {
			return h.Value
		}
	}
	return NotAvailable
}

// Body extracts the text of part. Multipart payloads only descend into their
// first child, so a text/plain alternative placed after an HTML part is never
// read.
func Body(part gmail.Part) string {
	if len(part.Parts) > 0 {
		return Body(part.Parts[0])
	}
	if part.Data == "" {
		return NoBody
	}
	text, ok := decode(part.Data)
	if !ok {
		return Undecodable
	}
	return text
}

// decode accepts base64url with or without padding.
func decode(data string) (string, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return "", false
	}
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// Truncate returns at most the first n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
