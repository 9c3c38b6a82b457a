package series

import (
	"crypto/sha256"
	"encoding/hex"
)

// CreateParams is the parameter summary sent to the contract when a series
// is created. The contract stores key lists only; defaults stay in the
// document source.
type CreateParams struct {
	MaxSupply              string   `json:"max_supply"`
	EnforceUniqueMintArgs  bool     `json:"enforce_unique_mint_args"`
	EnforceUniqueOwnerArgs bool     `json:"enforce_unique_owner_args"`
	Mint                   []string `json:"mint"`
	Owner                  []string `json:"owner"`
	Packages               []string `json:"packages"`
}

// Summarize reduces a full ParamSet to the contract-side creation summary.
func (p *ParamSet) Summarize() CreateParams {
	return CreateParams{
		MaxSupply:              p.MaxSupply,
		EnforceUniqueMintArgs:  p.EnforceUniqueMintArgs,
		EnforceUniqueOwnerArgs: p.EnforceUniqueOwnerArgs,
		Mint:                   p.Keys(GroupMint),
		Owner:                  p.Keys(GroupOwner),
		Packages:               p.Packages,
	}
}

// Fingerprint identifies the creation summary: the sha256 hex digest of
// its canonical JSON encoding. Equivalent summaries produce equal
// fingerprints regardless of how they were constructed, so the value is
// stable across renders and safe to compare against published state.
func (c CreateParams) Fingerprint() (string, error) {
	data, err := MarshalCanonical(Object{
		"max_supply":                String(c.MaxSupply),
		"enforce_unique_mint_args":  Bool(c.EnforceUniqueMintArgs),
		"enforce_unique_owner_args": Bool(c.EnforceUniqueOwnerArgs),
		"mint":                      stringArray(c.Mint),
		"owner":                     stringArray(c.Owner),
		"packages":                  stringArray(c.Packages),
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func stringArray(ss []string) Array {
	arr := make(Array, len(ss))
	for i, s := range ss {
		arr[i] = String(s)
	}
	return arr
}
