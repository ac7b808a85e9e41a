package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
	"github.com/felixgeelhaar/porter/pkg/domain/generate"
)

// Generator turns a raw text completer into the engine's generator. It owns
// the prompt assembly and the extraction of the artifact from model output.
type Generator struct {
	completer Completer
}

var _ generate.Generator = (*Generator)(nil)

func NewGenerator(completer Completer) *Generator {
	return &Generator{completer: completer}
}

func (g *Generator) ID() string {
	return g.completer.ID()
}

func (g *Generator) Generate(ctx context.Context, unit conversion.Unit, genCtx generate.Context, mode generate.Mode) ([]byte, error) {
	req := CompletionRequest{
		System: systemPrompt(unit, genCtx),
		Prompt: userPrompt(unit, genCtx, mode),
	}

	resp, err := g.completer.Complete(ctx, req)
	if err != nil {
		return nil, generate.Failed(err)
	}

	artifact := extractArtifact(resp.Text)
	if artifact == "" {
		return nil, nil
	}
	return []byte(artifact), nil
}

func systemPrompt(unit conversion.Unit, genCtx generate.Context) string {
	return fmt.Sprintf(
		"You convert %s infrastructure code to Ansible. Output exactly one artifact conforming to schema %s, inside a single fenced code block. No commentary.",
		unit.Technology.DisplayName(), genCtx.TargetSchema)
}

func userPrompt(unit conversion.Unit, genCtx generate.Context, mode generate.Mode) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Target file: %s (category: %s)\n", unit.TargetPath, unit.Category)

	if unit.Content != "" {
		fmt.Fprintf(&b, "\nSource file %s:\n```\n%s\n```\n", unit.SourcePath, unit.Content)
	} else {
		b.WriteString("\nThere is no source file; produce the structural artifact from convention.\n")
	}

	if mode == generate.ModeFix {
		fmt.Fprintf(&b, "\nCurrent artifact:\n```\n%s\n```\n", genCtx.Existing)
		b.WriteString("\nThe artifact has lint findings. Produce a corrected full artifact that resolves every finding:\n")
		for _, f := range genCtx.Findings {
			fmt.Fprintf(&b, "- %s:%d [%s] %s\n", f.FilePath, f.Line, f.RuleID, f.Message)
		}
	}

	return b.String()
}

// extractArtifact pulls the artifact out of the completion text. Models
// are asked for one fenced block; tolerate a bare response by using the
// trimmed text as-is.
func extractArtifact(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	start := strings.Index(trimmed, "```")
	if start == -1 {
		return trimmed
	}

	rest := trimmed[start+3:]
	// Drop the info string (```yaml etc.)
	if nl := strings.Index(rest, "\n"); nl != -1 {
		rest = rest[nl+1:]
	}

	end := strings.Index(rest, "```")
	if end == -1 {
		return strings.TrimSpace(rest)
	}

	body := rest[:end]
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return strings.TrimRight(body, "\n") + "\n"
}
