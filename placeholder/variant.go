package placeholder

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Variant names for the built-in manipulations.
const (
	VariantLQIP    = "LQIP"
	VariantGIP     = "GIP"
	VariantLCPLQIP = "LCPLQIP"
	VariantFormat  = "Format"
)

// VariantName builds a cache key for a manipulation and its arguments. With no
// arguments the name is returned as is; otherwise the JSON encoded argument
// list is appended as unpadded URL-safe base64, e.g. GIP + [230,230,230] ->
// "GIPWzIzMCwyMzAsMjMwXQ".
func VariantName(name string, args ...any) string {
	if len(args) == 0 {
		return name
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		// arguments are plain scalars
		return name
	}
	return name + strings.TrimRight(base64.URLEncoding.EncodeToString(encoded), "=")
}
