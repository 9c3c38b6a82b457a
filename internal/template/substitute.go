// Package template replaces placeholder tokens in a script body with
// concrete parameter and identity values.
package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/atelier/internal/series"
)

// Placeholder tokens with fixed identity/context semantics.
const (
	OwnerIDToken      = "{{OWNER_ID}}"
	NumTransfersToken = "{{NUM_TRANSFERS}}"
)

// Context carries the identity values substituted after the parameter
// groups.
type Context struct {
	OwnerID      string
	NumTransfers int64
}

// Substitute replaces placeholders in script, in a fixed order: every mint
// entry, then every owner entry, then {{OWNER_ID}}, then {{NUM_TRANSFERS}}.
// Order matters - later rules must not re-match text produced by earlier
// ones.
//
// String defaults are substituted literally (unquoted): the author's
// template supplies surrounding quotes or relies on the value containing
// them. Any other default is substituted as its JSON text. {{OWNER_ID}}
// becomes a single-quoted string literal; {{NUM_TRANSFERS}} a bare number.
//
// Unmatched placeholders are left verbatim - authors may include literal
// {{...}} text unrelated to recognized keys. Because consumed placeholders
// are fully replaced and substitution introduces no new placeholder syntax,
// Substitute is idempotent on its own output.
func Substitute(script string, params *series.ParamSet, ctx Context) (string, error) {
	for _, g := range series.Groups {
		for _, entry := range params.Group(g) {
			replacement, err := encodeDefault(entry.Spec.Default)
			if err != nil {
				return "", fmt.Errorf("substitute %s.%s: %w", g, entry.Key, err)
			}
			script = strings.ReplaceAll(script, "{{"+entry.Key+"}}", replacement)
		}
	}

	script = strings.ReplaceAll(script, OwnerIDToken, "'"+ctx.OwnerID+"'")
	script = strings.ReplaceAll(script, NumTransfersToken, strconv.FormatInt(ctx.NumTransfers, 10))

	return script, nil
}

func encodeDefault(v series.Value) (string, error) {
	if v == nil {
		return "null", nil
	}
	if s, ok := series.AsString(v); ok {
		return s, nil
	}
	return series.EncodeValue(v)
}
