package jsonp

import (
	"bytes"
	"encoding/json"
)

// invocation extracts the single JSON argument of `<id>(<json>)` from a
// script body. Leading comments such as `/**/` and a trailing `;` are allowed.
func invocation(body []byte, id string) (json.RawMessage, bool) {
	start := bytes.Index(body, []byte(id+"("))
	if start < 0 {
		return nil, false
	}
	// the identifier must not be the suffix of a longer name
	if start > 0 && isIdentByte(body[start-1]) {
		return nil, false
	}
	rest := body[start+len(id)+1:]
	end := bytes.LastIndexByte(rest, ')')
	if end < 0 {
		return nil, false
	}
	arg := bytes.TrimSpace(rest[:end])
	if len(arg) == 0 || !json.Valid(arg) {
		return nil, false
	}
	out := make(json.RawMessage, len(arg))
	copy(out, arg)
	return out, true
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
