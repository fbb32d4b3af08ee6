package logging

import (
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveKeys never reach a sink with their value. Keys are compared
// lowercased.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"old_password":  {},
	"new_password":  {},
	"access_token":  {},
	"refresh_token": {},
	"accesstoken":   {},
	"refreshtoken":  {},
	"authorization": {},
}

func isSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// redactArgs returns args with the values of sensitive keys replaced. It
// understands both alternating key/value pairs and slog.Attr values. The
// input slice is not modified.
func redactArgs(args []any) []any {
	var out []any
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case slog.Attr:
			if isSensitive(v.Key) {
				out = ensureCopy(out, args)
				out[i] = slog.String(v.Key, redacted)
			}
		case string:
			if i+1 < len(args) && isSensitive(v) {
				out = ensureCopy(out, args)
				out[i+1] = redacted
			}
			i++
		}
	}
	if out == nil {
		return args
	}
	return out
}

func ensureCopy(out, args []any) []any {
	if out != nil {
		return out
	}
	return append([]any(nil), args...)
}
