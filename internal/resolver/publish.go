package resolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"github.com/roach88/atelier/internal/remote"
)

// addPackageArgs is the argument payload for add_package.
type addPackageArgs struct {
	NameVersion string   `json:"name_version"`
	URLs        []string `json:"urls"`
	SrcHash     string   `json:"src_hash"`
}

// Publisher registers new packages with the contract. The source at the
// CDN URL is fetched and hashed so the contract can pin the published
// content.
type Publisher struct {
	caller  remote.Caller
	client  *http.Client
	deposit string
}

// NewPublisher creates a publisher using the given HTTP client for source
// fetches. A nil client falls back to http.DefaultClient.
func NewPublisher(caller remote.Caller, client *http.Client, deposit string) *Publisher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Publisher{caller: caller, client: client, deposit: deposit}
}

// Publish fetches the library source at url, hashes it, and registers
// ref -> url with the contract.
func (p *Publisher) Publish(ctx context.Context, ref, url string) error {
	if ref == "" || url == "" {
		return fmt.Errorf("publish: a name@version and CDN URL are required")
	}

	hash, err := p.fetchHash(ctx, url)
	if err != nil {
		return fmt.Errorf("publish %s: %w", ref, err)
	}

	_, err = p.caller.Call(ctx, remote.MethodAddPackage, addPackageArgs{
		NameVersion: ref,
		URLs:        []string{url},
		SrcHash:     hash,
	}, p.deposit)
	if err != nil {
		return remote.WrapError(remote.MethodAddPackage, err)
	}
	return nil
}

// fetchHash downloads the package source and returns its sha256 hex digest.
func (p *Publisher) fetchHash(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch source: unexpected status %s", resp.Status)
	}

	h := sha256.New()
	if _, err := io.Copy(h, resp.Body); err != nil {
		return "", fmt.Errorf("hash source: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
