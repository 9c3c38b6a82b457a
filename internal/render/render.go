// Package render drives a full document render: parse, argument binding,
// substitution, package resolution, composition, and mounting.
package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/atelier/internal/directive"
	"github.com/roach88/atelier/internal/resolver"
	"github.com/roach88/atelier/internal/sandbox"
	"github.com/roach88/atelier/internal/series"
	"github.com/roach88/atelier/internal/template"
)

// DefaultOwnerID stands in for the token owner when a render has no
// minted-token context (e.g. editor preview).
const DefaultOwnerID = "account.near"

// Renderer owns the pipeline collaborators for one editing session.
type Renderer struct {
	resolver *resolver.Resolver
	composer *sandbox.Composer
	registry *sandbox.Registry
	bridge   *sandbox.Bridge
}

// New creates a renderer.
func New(res *resolver.Resolver, composer *sandbox.Composer, registry *sandbox.Registry, bridge *sandbox.Bridge) *Renderer {
	return &Renderer{
		resolver: res,
		composer: composer,
		registry: registry,
		bridge:   bridge,
	}
}

// Request describes one render.
type Request struct {
	// MountID names the UI mount point to deliver into. Empty skips
	// mounting (callers keep the composed document from the Result).
	MountID string

	// Source is the raw directive document.
	Source string

	// Args optionally overrides group defaults positionally, mirroring
	// how mint/owner argument lists bind on chain.
	Args map[series.Group][]series.Value

	// OwnerID and NumTransfers fill the identity placeholders. An empty
	// OwnerID falls back to DefaultOwnerID.
	OwnerID      string
	NumTransfers int64
}

// Result is a completed render. Document is created fresh per render and
// never mutated afterwards.
type Result struct {
	ID       string
	Document string
	Params   *series.ParamSet
	Mounted  bool
}

// Render runs the pipeline. Parse failures are reported to the bridge
// console and returned; they abort this render without touching the host.
func (r *Renderer) Render(ctx context.Context, req Request) (*Result, error) {
	doc, err := directive.Parse(req.Source)
	if err != nil {
		var parseErr *directive.ParseError
		if errors.As(err, &parseErr) {
			r.bridge.Errorf("%v", parseErr)
		}
		return nil, err
	}

	for _, g := range series.Groups {
		if args, ok := req.Args[g]; ok {
			doc.Params.ApplyPositional(g, args)
		}
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = DefaultOwnerID
	}

	code, err := template.Substitute(doc.Code, doc.Params, template.Context{
		OwnerID:      ownerID,
		NumTransfers: req.NumTransfers,
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	urls, err := r.resolver.ResolveAll(ctx, doc.Params.Packages)
	if err != nil {
		r.bridge.Errorf("%v", err)
		return nil, err
	}

	composed := r.composer.Compose(doc.CSS, doc.HTML, code, urls)

	result := &Result{
		ID:       uuid.NewString(),
		Document: composed,
		Params:   doc.Params,
	}
	if req.MountID != "" {
		result.Mounted = r.registry.Mount(req.MountID, composed)
	}
	return result, nil
}
