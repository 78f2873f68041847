package auth

import (
	"os"
	"strconv"
	"strings"
)

// KeyTable maps an opaque API key to the principal it authenticates.
// Populated once at startup and never mutated afterward.
type KeyTable map[string]Principal

// LoadFromEnviron builds a KeyTable from every API_KEY_* and
// SENTINEL_API_KEY environment variable, each carrying the value format
// "key:principal_id:role:is_agent".
func LoadFromEnviron() KeyTable {
	table := make(KeyTable)
	for _, entry := range os.Environ() {
		eq := strings.IndexByte(entry, '=')
		if eq < 0 {
			continue
		}
		name, value := entry[:eq], entry[eq+1:]
		if !strings.HasPrefix(name, "API_KEY_") && name != "SENTINEL_API_KEY" {
			continue
		}
		if p, key, ok := parseKeyValue(value); ok {
			table[key] = p
		}
	}
	return table
}

func parseKeyValue(value string) (Principal, string, bool) {
	parts := strings.SplitN(value, ":", 4)
	if len(parts) != 4 {
		return Principal{}, "", false
	}
	key, principalID, roleStr, isAgentStr := parts[0], parts[1], parts[2], parts[3]
	role := Role(roleStr)
	if !role.IsValid() {
		return Principal{}, "", false
	}
	isAgent, err := strconv.ParseBool(isAgentStr)
	if err != nil {
		return Principal{}, "", false
	}
	return Principal{ID: principalID, Role: role, IsAgent: isAgent}, key, true
}

// Lookup validates an opaque key against the table.
func (t KeyTable) Lookup(key string) (Principal, error) {
	if key == "" {
		return Principal{}, ErrMissingKey
	}
	p, ok := t[key]
	if !ok {
		return Principal{}, ErrUnknownKey
	}
	return p, nil
}
