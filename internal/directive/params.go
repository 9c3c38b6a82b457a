package directive

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/atelier/internal/series"
)

// parseParams compiles a @params region into a ParamSet. The content is
// relaxed JSON: unquoted keys, comments, and trailing commas are all
// accepted by the CUE evaluator.
//
// Missing mint/owner keys default to empty groups - never an error.
func parseParams(content string) (*series.ParamSet, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(content)
	if err := v.Err(); err != nil {
		return nil, wrapCUEError(err)
	}
	if v.Kind() != cue.StructKind {
		return nil, &ParseError{
			Section: "params",
			Message: fmt.Sprintf("expected an object, got %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}

	params := &series.ParamSet{}

	if supply := v.LookupPath(cue.ParsePath("max_supply")); supply.Exists() {
		s, err := decodeSupply(supply)
		if err != nil {
			return nil, err
		}
		params.MaxSupply = s
	}

	var err error
	if params.EnforceUniqueMintArgs, err = decodeFlag(v, "enforce_unique_mint_args"); err != nil {
		return nil, err
	}
	if params.EnforceUniqueOwnerArgs, err = decodeFlag(v, "enforce_unique_owner_args"); err != nil {
		return nil, err
	}

	if params.Mint, err = parseGroup(v, series.GroupMint); err != nil {
		return nil, err
	}
	if params.Owner, err = parseGroup(v, series.GroupOwner); err != nil {
		return nil, err
	}

	if params.Packages, err = parsePackages(v); err != nil {
		return nil, err
	}

	return params, nil
}

// decodeSupply accepts max_supply as either a string (the usual form) or a
// bare integer, normalizing to the string the contract expects.
func decodeSupply(v cue.Value) (string, error) {
	if s, err := v.String(); err == nil {
		return s, nil
	}
	if n, err := v.Int64(); err == nil {
		return fmt.Sprintf("%d", n), nil
	}
	return "", &ParseError{
		Section: "params",
		Message: "max_supply must be a string or integer",
		Pos:     v.Pos(),
	}
}

func decodeFlag(v cue.Value, name string) (bool, error) {
	flag := v.LookupPath(cue.ParsePath(name))
	if !flag.Exists() {
		return false, nil
	}
	b, err := flag.Bool()
	if err != nil {
		return false, &ParseError{
			Section: "params",
			Message: fmt.Sprintf("%s must be a boolean", name),
			Pos:     flag.Pos(),
		}
	}
	return b, nil
}

// parseGroup extracts one ordered parameter group. Field iteration follows
// source declaration order, which is semantically meaningful: external
// argument lists bind positionally.
func parseGroup(v cue.Value, g series.Group) ([]series.Param, error) {
	groupVal := v.LookupPath(cue.ParsePath(string(g)))
	if !groupVal.Exists() {
		return nil, nil
	}

	iter, err := groupVal.Fields()
	if err != nil {
		return nil, wrapCUEError(err)
	}

	var entries []series.Param
	for iter.Next() {
		key := iter.Label()
		spec, err := parseSpec(iter.Value(), g, key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, series.Param{Key: key, Spec: spec})
	}
	return entries, nil
}

func parseSpec(v cue.Value, g series.Group, key string) (series.Spec, error) {
	var spec series.Spec

	defVal := v.LookupPath(cue.ParsePath("default"))
	if defVal.Exists() {
		def, err := cueToValue(defVal)
		if err != nil {
			return spec, &ParseError{
				Section: "params",
				Message: fmt.Sprintf("%s.%s.default: %v", g, key, err),
				Pos:     defVal.Pos(),
			}
		}
		spec.Default = def
	} else {
		spec.Default = series.Null{}
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if typeVal.Exists() {
		t, err := typeVal.String()
		if err != nil {
			return spec, &ParseError{
				Section: "params",
				Message: fmt.Sprintf("%s.%s.type must be a string", g, key),
				Pos:     typeVal.Pos(),
			}
		}
		spec.Type = t
	}

	return spec, nil
}

func parsePackages(v cue.Value) ([]string, error) {
	pkgVal := v.LookupPath(cue.ParsePath("packages"))
	if !pkgVal.Exists() {
		return nil, nil
	}

	iter, err := pkgVal.List()
	if err != nil {
		return nil, &ParseError{
			Section: "params",
			Message: "packages must be a list of name@version strings",
			Pos:     pkgVal.Pos(),
		}
	}

	var refs []string
	seen := make(map[string]bool)
	for iter.Next() {
		ref, err := iter.Value().String()
		if err != nil {
			return nil, &ParseError{
				Section: "params",
				Message: "packages entries must be strings",
				Pos:     iter.Value().Pos(),
			}
		}
		// Duplicate references are idempotent, not errors.
		if seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	return refs, nil
}

// cueToValue converts a concrete CUE value into the series value union.
func cueToValue(v cue.Value) (series.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return series.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, err
		}
		return series.Bool(b), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, err
		}
		return series.String(s), nil
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return series.Number(f), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, err
		}
		var arr series.Array
		for iter.Next() {
			elem, err := cueToValue(iter.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, err
		}
		obj := make(series.Object)
		for iter.Next() {
			elem, err := cueToValue(iter.Value())
			if err != nil {
				return nil, err
			}
			obj[iter.Label()] = elem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported value kind: %v", v.Kind())
	}
}
