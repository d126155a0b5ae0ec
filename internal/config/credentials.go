package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Deployment environments hand the service-account material over in several
// shapes: real JSON, a Python-dict-literal pasted from a console (single
// quotes), base64-encoded JSON, or a path to a JSON file. Each shape gets its
// own parser and the parsers run in a fixed order; the first success wins.

const (
	minBase64Length   = 40
	errSnippetLength  = 80
	base64Alphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="
	credentialsSuffix = ".json"
)

type credentialParser struct {
	name  string
	parse func(string) ([]byte, error)
}

var credentialParsers = []credentialParser{
	{name: "json", parse: parseJSONObject},
	{name: "python-dict", parse: parsePythonDict},
	{name: "base64", parse: parseBase64JSON},
	{name: "file", parse: parseCredentialsFile},
}

// ResolveCredentials turns raw credential material into service-account JSON
// by trying each supported format in order.
func ResolveCredentials(raw string) ([]byte, error) {
	raw = stripWrappingQuotes(strings.TrimSpace(raw))
	if raw == "" {
		return nil, errors.New("empty credential material")
	}

	var attempts []string
	for _, p := range credentialParsers {
		creds, err := p.parse(raw)
		if err == nil {
			return creds, nil
		}
		attempts = append(attempts, fmt.Sprintf("%s: %v", p.name, err))
	}

	snippet := raw
	if len(snippet) > errSnippetLength {
		snippet = snippet[:errSnippetLength]
	}
	return nil, fmt.Errorf("unrecognized credential format (%s); input starts with %q",
		strings.Join(attempts, "; "), snippet)
}

// parseJSONObject accepts strict JSON and requires the top level to be an
// object, not a scalar or array.
func parseJSONObject(raw string) ([]byte, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("credential JSON is null")
	}
	return []byte(raw), nil
}

// parsePythonDict accepts a Python dict literal (single-quoted strings) and
// converts it to JSON before validating.
func parsePythonDict(raw string) ([]byte, error) {
	if !strings.Contains(raw, "'") {
		return nil, errors.New("no single-quoted strings present")
	}
	converted, err := pythonDictToJSON(raw)
	if err != nil {
		return nil, err
	}
	return parseJSONObject(converted)
}

// parseBase64JSON accepts base64-encoded JSON. Short strings and anything
// containing braces are rejected up front so plain JSON never lands here.
func parseBase64JSON(raw string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' {
			return -1
		}
		return r
	}, raw)

	if len(compact) < minBase64Length {
		return nil, errors.New("too short to be base64 credentials")
	}
	if strings.ContainsAny(compact, "{}") {
		return nil, errors.New("contains braces, not base64")
	}
	for _, r := range compact {
		if !strings.ContainsRune(base64Alphabet, r) {
			return nil, fmt.Errorf("invalid base64 character %q", r)
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, err
	}
	return parseJSONObject(strings.TrimSpace(string(decoded)))
}

// parseCredentialsFile accepts a filesystem path to a .json file.
func parseCredentialsFile(raw string) ([]byte, error) {
	if !strings.HasSuffix(strings.ToLower(raw), credentialsSuffix) {
		return nil, errors.New("not a .json path")
	}
	data, err := os.ReadFile(raw)
	if err != nil {
		return nil, err
	}
	return parseJSONObject(strings.TrimSpace(string(data)))
}

// stripWrappingQuotes removes one layer of matching quotes around the whole
// value, a common artifact of copy-pasted environment variables.
func stripWrappingQuotes(s string) string {
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '\'' || s[0] == '"') {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// pythonDictToJSON rewrites single-quoted string literals as double-quoted
// ones, leaving existing double-quoted strings intact. Escape sequences
// inside strings are preserved, except \' which JSON spells as a bare quote.
// Outside strings, the Python constants True/False/None become their JSON
// spellings.
func pythonDictToJSON(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	var word strings.Builder
	flushWord := func() {
		switch word.String() {
		case "":
		case "True":
			b.WriteString("true")
		case "False":
			b.WriteString("false")
		case "None":
			b.WriteString("null")
		default:
			b.WriteString(word.String())
		}
		word.Reset()
	}

	inSingle := false
	inDouble := false
	escaped := false

	for _, r := range s {
		if escaped {
			if inSingle && r == '\'' {
				b.WriteRune('\'')
			} else {
				b.WriteRune('\\')
				b.WriteRune(r)
			}
			escaped = false
			continue
		}

		switch {
		case r == '\\' && (inSingle || inDouble):
			escaped = true
		case inSingle:
			if r == '\'' {
				inSingle = false
				b.WriteRune('"')
			} else if r == '"' {
				b.WriteString(`\"`)
			} else {
				b.WriteRune(r)
			}
		case inDouble:
			if r == '"' {
				inDouble = false
			}
			b.WriteRune(r)
		case r == '\'':
			flushWord()
			inSingle = true
			b.WriteRune('"')
		case r == '"':
			flushWord()
			inDouble = true
			b.WriteRune(r)
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			word.WriteRune(r)
		default:
			flushWord()
			b.WriteRune(r)
		}
	}
	flushWord()

	if inSingle || inDouble || escaped {
		return "", errors.New("unterminated string literal")
	}
	return b.String(), nil
}
