package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	// Authorization header values.
	authSchemePattern = regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`)

	// URLs with embedded userinfo, e.g. a verse API base URL behind a proxy.
	credentialURLPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://[^/@\s:]+:[^/@\s]+@`)
)

// redactedFields are attribute and struct field names whose values are never logged.
var redactedFields = []string{
	"password",
	"secret",
	"token",
	"apiKey",
	"api_key",
	"authorization",
	"cookie",
	"credentials",
}

// DefaultRedactOptions returns the masq options applied to every log record.
// Pass extra options to NewReplaceAttr to extend them.
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(redactedFields)+3)
	for _, name := range redactedFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(authSchemePattern),
		masq.WithRegex(credentialURLPattern),
	)
}

// NewReplaceAttr returns a slog ReplaceAttr func that redacts secrets.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
