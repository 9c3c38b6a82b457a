// Package directive parses raw source documents into typed sections.
//
// A source document mixes four kinds of directive regions, each bounded by
// paired occurrences of a tag token:
//
//	@params  relaxed-JSON parameter block (exactly one region required)
//	@html    markup injected into the composed document body
//	@css     styling wrapped in a style block
//	@js      script body (replaces the residual text when present)
//
// Whatever text remains after all regions are extracted is the script body,
// unless one or more @js regions override it.
package directive

import (
	"strings"

	"github.com/roach88/atelier/internal/series"
)

// Tag tokens recognized by the parser.
const (
	TagParams = "@params"
	TagHTML   = "@html"
	TagCSS    = "@css"
	TagJS     = "@js"
)

// Document is the parsed form of a source document. Derived, never stored;
// recompute by re-parsing whenever the source changes.
type Document struct {
	Code   string
	HTML   string
	CSS    string
	Params *series.ParamSet
}

// Parse splits source into directive regions and compiles the @params
// block. The returned Code never contains directive tags or their captured
// content. A missing or malformed @params region fails with *ParseError.
func Parse(source string) (*Document, error) {
	working, paramRegions := extractRegions(source, TagParams)
	if len(paramRegions) == 0 {
		return nil, &ParseError{
			Section: "params",
			Message: "missing @params region: open and close the parameter block with @params lines",
		}
	}

	params, err := parseParams(paramRegions[0])
	if err != nil {
		return nil, err
	}

	working, htmlRegions := extractRegions(working, TagHTML)
	working, cssRegions := extractRegions(working, TagCSS)
	working, jsRegions := extractRegions(working, TagJS)

	code := working
	if len(jsRegions) > 0 {
		// @js excludes surrounding boilerplate from execution: the joined
		// regions replace whatever text remains.
		code = strings.Join(jsRegions, "\n")
	}

	return &Document{
		Code:   strings.TrimSpace(code),
		HTML:   strings.Join(htmlRegions, "\n"),
		CSS:    strings.Join(cssRegions, "\n"),
		Params: params,
	}, nil
}

// ReplaceParams returns source with its first @params region replaced by
// the serialized form of params. This is the structured counterpart to
// editing the block text by hand: callers mutate a parsed ParamSet and
// write the result back. Everything outside the region is preserved
// byte-for-byte.
func ReplaceParams(source string, params *series.ParamSet) (string, error) {
	block, err := params.Block()
	if err != nil {
		return "", err
	}

	open := strings.Index(source, TagParams)
	if open < 0 {
		return "", &ParseError{
			Section: "params",
			Message: "missing @params region: open and close the parameter block with @params lines",
		}
	}
	rest := source[open+len(TagParams):]
	closing := strings.Index(rest, TagParams)
	if closing < 0 {
		return "", &ParseError{
			Section: "params",
			Message: "unclosed @params region",
		}
	}

	end := open + len(TagParams) + closing + len(TagParams)
	return source[:open] + block + source[end:], nil
}

// extractRegions removes every region bounded by paired occurrences of tag
// and returns the residual text plus the captured region contents in
// document order. Tag occurrences pair by position: the 1st and 2nd bound
// the first region, the 3rd and 4th the second, and so on. A trailing
// unpaired tag is stripped without capturing a region.
func extractRegions(text, tag string) (string, []string) {
	parts := strings.Split(text, tag)
	if len(parts) == 1 {
		return text, nil
	}

	var kept strings.Builder
	var regions []string

	for i, part := range parts {
		// parts[i] follows the i-th tag occurrence. An odd segment closed
		// by a following tag is region content; everything else (including
		// the text after a trailing unpaired tag) is surrounding text.
		if i%2 == 1 && i < len(parts)-1 {
			regions = append(regions, part)
			continue
		}
		kept.WriteString(part)
	}

	return kept.String(), regions
}
