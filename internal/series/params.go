package series

import (
	"fmt"
	"strings"
)

// Group names a parameter group. Parameters come in two labeled groups:
// mint-time arguments and owner-editable arguments.
type Group string

const (
	// GroupMint holds parameters bound positionally at mint time.
	GroupMint Group = "mint"
	// GroupOwner holds parameters the token owner may edit later.
	GroupOwner Group = "owner"
)

// Groups lists the parameter groups in substitution order. Mint parameters
// are always substituted before owner parameters.
var Groups = []Group{GroupMint, GroupOwner}

// Spec describes a single tunable parameter: its default value and the
// author-declared type label.
type Spec struct {
	Default Value  `json:"default"`
	Type    string `json:"type"`
}

// Param is one entry in an ordered parameter group. Order is semantically
// meaningful: external argument lists bind positionally.
type Param struct {
	Key  string
	Spec Spec
}

// ParamSet is the typed form of a document's @params block.
type ParamSet struct {
	MaxSupply              string
	EnforceUniqueMintArgs  bool
	EnforceUniqueOwnerArgs bool
	Mint                   []Param
	Owner                  []Param
	Packages               []string
}

// Group returns the entries of the named group. Unknown groups return nil.
func (p *ParamSet) Group(g Group) []Param {
	switch g {
	case GroupMint:
		return p.Mint
	case GroupOwner:
		return p.Owner
	}
	return nil
}

// Keys returns the declared key order of a group.
func (p *ParamSet) Keys(g Group) []string {
	entries := p.Group(g)
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// ApplyPositional overrides group defaults from a positional argument list.
// Entry i of args overrides the default of the i-th declared parameter.
// Nil entries and arguments beyond the declared parameters are ignored.
func (p *ParamSet) ApplyPositional(g Group, args []Value) {
	entries := p.Group(g)
	for i := range entries {
		if i >= len(args) || args[i] == nil {
			continue
		}
		entries[i].Spec.Default = args[i]
	}
}

// HasPackage reports whether ref is already in the package list.
func (p *ParamSet) HasPackage(ref string) bool {
	for _, existing := range p.Packages {
		if existing == ref {
			return true
		}
	}
	return false
}

// IncludePackage appends a package reference to the set. Duplicates are
// idempotent, not errors.
func (p *ParamSet) IncludePackage(ref string) {
	if p.HasPackage(ref) {
		return
	}
	p.Packages = append(p.Packages, ref)
}

// Block serializes the set back into an @params directive region. This is
// the structured replacement for editing the raw source text: callers
// mutate the ParamSet and regenerate the block.
func (p *ParamSet) Block() (string, error) {
	var b strings.Builder
	b.WriteString("@params\n{\n")
	fmt.Fprintf(&b, "\tmax_supply: %q,\n", p.MaxSupply)
	fmt.Fprintf(&b, "\tenforce_unique_mint_args: %v,\n", p.EnforceUniqueMintArgs)
	fmt.Fprintf(&b, "\tenforce_unique_owner_args: %v,\n", p.EnforceUniqueOwnerArgs)

	for _, g := range Groups {
		fmt.Fprintf(&b, "\t%s: {\n", g)
		for _, entry := range p.Group(g) {
			def, err := EncodeValue(entry.Spec.Default)
			if err != nil {
				return "", fmt.Errorf("serialize %s.%s: %w", g, entry.Key, err)
			}
			fmt.Fprintf(&b, "\t\t%s: { default: %s, type: %q },\n",
				blockKey(entry.Key), def, entry.Spec.Type)
		}
		b.WriteString("\t},\n")
	}

	refs := make([]string, len(p.Packages))
	for i, ref := range p.Packages {
		refs[i] = fmt.Sprintf("%q", ref)
	}
	fmt.Fprintf(&b, "\tpackages: [%s],\n", strings.Join(refs, ", "))

	b.WriteString("}\n@params")
	return b.String(), nil
}

// blockKey renders a key for the serialized block, unquoted when it is a
// plain identifier (the style authors write), quoted otherwise.
func blockKey(key string) string {
	if isIdentifier(key) {
		return key
	}
	return fmt.Sprintf("%q", key)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
