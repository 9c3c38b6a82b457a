package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/roach88/atelier/internal/remote"
)

// Resolver resolves package references through the contract, memoizing
// results in an injected Cache.
type Resolver struct {
	caller remote.Caller
	cache  *Cache
}

// New creates a resolver backed by the given caller and cache.
func New(caller remote.Caller, cache *Cache) *Resolver {
	return &Resolver{caller: caller, cache: cache}
}

// getPackageArgs is the argument payload for get_package.
type getPackageArgs struct {
	NameVersion string `json:"name_version"`
}

// packageRecord is the contract's stored package entry.
type packageRecord struct {
	URLs []string `json:"urls"`
}

// Resolve returns the URL for ref. The first resolution performs one
// remote lookup and memoizes the result; later resolutions return the
// cached value without a remote call, even across unrelated renders.
//
// Concurrent first-time resolutions for the same ref are not deduplicated:
// both callers issue the lookup and store the same immutable URL. Tests
// pin this behavior; collapse with a single-flight map only as a
// deliberate change.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	if url, ok := r.cache.Get(ref); ok {
		return url, nil
	}

	result, err := r.caller.View(ctx, remote.MethodGetPackage, getPackageArgs{NameVersion: ref})
	if err != nil {
		return "", remote.WrapError(remote.MethodGetPackage, err)
	}

	var record packageRecord
	if err := json.Unmarshal(result, &record); err != nil {
		return "", fmt.Errorf("resolve %s: decode package record: %w", ref, err)
	}
	if len(record.URLs) == 0 {
		return "", fmt.Errorf("resolve %s: package has no URLs", ref)
	}

	url := record.URLs[0]
	r.cache.Put(ref, url)
	return url, nil
}

// ResolveAll resolves refs concurrently, preserving input order in the
// result. The first error wins; remaining resolutions still run to
// completion before it is returned.
func (r *Resolver) ResolveAll(ctx context.Context, refs []string) ([]string, error) {
	urls := make([]string, len(refs))
	errs := make([]error, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			urls[i], errs[i] = r.Resolve(ctx, ref)
		}(i, ref)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return urls, nil
}
