package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hisab/internal/core"
)

var errInvalidDate = errors.New("invalid date: expected YYYY-MM-DD or RFC 3339")

// requestBodyParser handles different content types for request body
// parsing. It supports both JSON and form-encoded data.
type requestBodyParser struct {
	body     []byte
	jsonData map[string]interface{}
	formData url.Values
	parsed   bool
	err      error
}

// newRequestBodyParser reads the body once and stores it for
// subsequent parsing.
func newRequestBodyParser(r *http.Request) *requestBodyParser {
	p := &requestBodyParser{}
	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// parse attempts to parse the body as JSON or form data.
func (p *requestBodyParser) parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' || p.body[0] == '[' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// get returns a string value from the parsed data (JSON or form).
func (p *requestBodyParser) get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// draftFromRequest builds a transaction draft from the request body.
// The amount accepts either a decimal string ("12.50") or raw cents
// via amountCents; dates accept "2006-01-02" or RFC 3339.
func draftFromRequest(r *http.Request) (core.Draft, error) {
	p := newRequestBodyParser(r)
	if err := p.parse(); err != nil {
		return core.Draft{}, err
	}

	var draft core.Draft

	kind, err := core.ParseKind(p.get("kind"))
	if err != nil {
		return core.Draft{}, err
	}
	draft.Kind = kind

	if raw := p.get("amountCents"); raw != "" {
		cents, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return core.Draft{}, core.ErrInvalidAmount
		}
		draft.Amount = core.Money{Cents: cents}
	} else {
		cents, err := core.ParseAmountToCents(p.get("amount"))
		if err != nil {
			return core.Draft{}, err
		}
		draft.Amount = core.Money{Cents: cents}
	}

	draft.Note = p.get("note")

	occurredAt, err := parseDate(p.get("occurredAt"))
	if err != nil {
		return core.Draft{}, err
	}
	draft.OccurredAt = occurredAt

	return draft, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, core.ErrMissingDate
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return t.UTC(), nil
}
