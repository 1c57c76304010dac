// Package rewrite holds the contract with the text-generation capability
// used to rewrite product copy. The generator is opaque; the only promises
// this package makes are stripping optional markdown code fences before
// parsing and treating empty or unparseable output as a recoverable
// per-item failure.
package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jumpingbeanltd/price-dashboard/pkg/errors"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Copy is the structured rewriting result expected inside the generated
// text.
type Copy struct {
	RewrittenDescription string `json:"rewrittenDescription"`
	RewrittenProductUses string `json:"rewrittenProductUses"`
	HTMLTitle            string `json:"htmlTitle"`
	MetaDescription      string `json:"metaDescription"`
}

// HTML renders the rewritten copy as the storefront description fragment.
func (c *Copy) HTML() string {
	var b strings.Builder
	b.WriteString("<p>")
	b.WriteString(c.RewrittenDescription)
	b.WriteString("</p>")
	if c.RewrittenProductUses != "" {
		b.WriteString("<p>")
		b.WriteString(c.RewrittenProductUses)
		b.WriteString("</p>")
	}
	return b.String()
}

// Rewriter turns product copy into SEO-friendly rewritten copy via a
// Generator.
type Rewriter struct {
	gen Generator
}

// New creates a Rewriter backed by the given generator.
func New(gen Generator) *Rewriter {
	return &Rewriter{gen: gen}
}

// Rewrite generates and parses rewritten copy for one product. Errors are
// recoverable per-item failures suitable for a batch result list.
func (r *Rewriter) Rewrite(ctx context.Context, name, description string) (*Copy, error) {
	raw, err := r.gen.Generate(ctx, Prompt(name, description))
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Prompt builds the rewriting prompt for one product.
func Prompt(name, description string) string {
	return fmt.Sprintf(`Rewrite the following product copy for an online storefront.
Respond with a single JSON object with exactly these fields:
"rewrittenDescription", "rewrittenProductUses", "htmlTitle", "metaDescription".

Product name: %s
Current description: %s`, name, description)
}

// Parse extracts the rewritten copy from raw generator output. Optional
// markdown code-fence wrapping is stripped first. Empty or unparseable
// output is an error, never a panic.
func Parse(raw string) (*Copy, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, errors.NewParseError("json", "", "empty generator output", nil)
	}

	var copy Copy
	if err := json.Unmarshal([]byte(cleaned), &copy); err != nil {
		return nil, errors.WrapParse("json", truncate(cleaned, 80), err)
	}

	if copy.RewrittenDescription == "" {
		return nil, errors.NewParseError("json", truncate(cleaned, 80), "missing rewrittenDescription", nil)
	}

	return &copy, nil
}

// StripFences removes a wrapping markdown code fence, with or without a
// language tag, from generator output.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag such as "json" on the opening fence line.
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine != "" && !strings.ContainsAny(firstLine, "{}[]") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
