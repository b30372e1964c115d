package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Recognized broker configuration keys. A Map may carry other keys; they are
// passed through to the client adapter untouched.
const (
	KeyBootstrapServers  = "bootstrap.servers"
	KeyGroupID           = "group.id"
	KeyAutoOffsetReset   = "auto.offset.reset"
	KeyEnableIdempotence = "enable.idempotence"
	KeyAcks              = "acks"
	KeyRequestTimeoutMS  = "request.timeout.ms"
	KeySASLMechanism     = "sasl.mechanisms"
	KeySASLUsername      = "sasl.username"
	KeySASLPassword      = "sasl.password"
)

// MaskToken replaces credential values in human-readable renderings.
const MaskToken = "****"

// credentialKeys holds the keys whose values must never appear in plaintext
// output. The key names themselves stay visible.
var credentialKeys = map[string]bool{
	KeySASLUsername:                  true,
	KeySASLPassword:                  true,
	"ssl.key.password":               true,
	"sasl.oauthbearer.client.secret": true,
	"sasl.oauthbearer.extensions":    true,
}

// Map is broker configuration passed through to the client adapter verbatim.
// Values are strings, bools or ints depending on the key.
type Map map[string]any

// Clone returns a shallow copy of the map. A nil receiver clones to an empty
// map, so callers can mutate the result unconditionally.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// GetString returns the value for key rendered as a string, or "" when the
// key is absent.
func (m Map) GetString(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// GetBool returns the value for key as a bool, or def when the key is absent
// or not interpretable as a bool.
func (m Map) GetBool(key string, def bool) bool {
	v, ok := m[key]
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}

// GetInt returns the value for key as an int, or def when the key is absent
// or not interpretable as an int.
func (m Map) GetInt(key string, def int) int {
	v, ok := m[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}

// Redacted returns a copy of the map with every credential value replaced by
// MaskToken.
func (m Map) Redacted() Map {
	out := m.Clone()
	for k := range out {
		if credentialKeys[k] {
			out[k] = MaskToken
		}
	}
	return out
}

// String renders the map as sorted "key=value" pairs with credentials
// masked. This is the only supported human-readable form; raw map values
// must not be logged.
func (m Map) String() string {
	redacted := m.Redacted()
	keys := make([]string, 0, len(redacted))
	for k := range redacted {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, redacted[k]))
	}
	return "{" + strings.Join(pairs, " ") + "}"
}

// CombineBootstrapServers merges the bootstrap servers given as a constructor
// argument with any "bootstrap.servers" entry in cfg. The constructor
// argument comes first; the result is the comma-delimited list the client
// adapter is built with.
func CombineBootstrapServers(servers []string, cfg Map) []string {
	combined := make([]string, 0, len(servers))
	combined = append(combined, servers...)
	if extra := cfg.GetString(KeyBootstrapServers); extra != "" {
		combined = append(combined, strings.Split(extra, ",")...)
	}
	return combined
}
