package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/controller"
)

// maxBodyBytes bounds credential submissions. Two 64-byte fields leave this
// generous even for verbose JSON.
const maxBodyBytes = 4096

type credentials struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

// parseCredentials extracts a credential record from the request body using
// an ordered chain of strategies: JSON, urlencoded form, and (when enabled)
// a best-effort raw-body scan. The first strategy that recognizes the body
// wins.
//
// A body that declares itself JSON but does not parse is rejected
// immediately rather than falling through: the client meant JSON and got
// it wrong, which is a 400, not a reason to guess.
func parseCredentials(r *http.Request, allowRawScan bool) (credentials, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return credentials{}, controller.NewValidationError("failed to read request body")
	}

	contentType := r.Header.Get("Content-Type")
	declaresJSON := strings.Contains(contentType, "json")

	if creds, ok := parseJSONBody(body); ok {
		return creds, nil
	}
	if declaresJSON {
		return credentials{}, controller.NewValidationError("malformed JSON body")
	}

	if creds, ok := parseFormBody(body); ok {
		return creds, nil
	}

	if allowRawScan {
		if creds, ok := scanRawBody(body); ok {
			return creds, nil
		}
	}

	return credentials{}, controller.NewValidationError("unrecognized request body")
}

// parseJSONBody recognizes a JSON object carrying identity/secret fields.
func parseJSONBody(body []byte) (credentials, bool) {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return credentials{}, false
	}
	var creds credentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return credentials{}, false
	}
	return creds, true
}

// parseFormBody recognizes a urlencoded form with an identity or secret key.
func parseFormBody(body []byte) (credentials, bool) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return credentials{}, false
	}
	_, hasIdentity := values["identity"]
	_, hasSecret := values["secret"]
	if !hasIdentity && !hasSecret {
		return credentials{}, false
	}
	return credentials{
		Identity: values.Get("identity"),
		Secret:   values.Get("secret"),
	}, true
}

// scanRawBody is a compatibility shim for clients that send neither valid
// JSON nor a well-formed urlencoded body: it scans the raw bytes for
// identity=/secret= pairs. Off by default; enabled by configuration.
func scanRawBody(body []byte) (credentials, bool) {
	text := string(body)

	identity, ok := scanField(text, "identity=")
	if !ok {
		return credentials{}, false
	}
	secret, _ := scanField(text, "secret=")

	return credentials{Identity: identity, Secret: secret}, true
}

func scanField(text, prefix string) (string, bool) {
	idx := strings.Index(text, prefix)
	if idx < 0 {
		return "", false
	}
	value := text[idx+len(prefix):]
	if end := strings.IndexAny(value, "&\r\n"); end >= 0 {
		value = value[:end]
	}
	if unescaped, err := url.QueryUnescape(value); err == nil {
		value = unescaped
	}
	return value, true
}
