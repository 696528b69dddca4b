package graph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/emicklei/dot"

	"democap/internal/logging"
)

const (
	// SVGName is the rendered graph file name inside the output directory.
	SVGName = "knowledge_graph.svg"
	// HTMLName is the standalone page embedding the SVG.
	HTMLName = "knowledge_graph_inline.html"
)

// DOT returns the Graphviz source: left-to-right layout, filled light blue
// circles carrying the description as tooltip, 10pt edge labels.
func (d *Document) DOT() string {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "LR")
	g.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "circle")
		n.Attr("style", "filled")
		n.Attr("fillcolor", "lightblue")
	})
	g.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontsize", "10")
	})

	for _, e := range d.Entities {
		g.Node(e.ID).Label(e.Name).Attr("tooltip", e.Description)
	}
	for _, r := range d.Relationships {
		g.Edge(g.Node(r.Source), g.Node(r.Target), r.Name)
	}
	return g.String()
}

// RenderOptions configures Render.
type RenderOptions struct {
	DotBinary string
	OutputDir string
	Logger    *slog.Logger
}

// RenderError carries Graphviz diagnostics for a failed render.
type RenderError struct {
	Binary string
	Stderr string
	Err    error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("%s -Tsvg failed: %v", e.Binary, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *RenderError) Unwrap() error { return e.Err }

// Render pipes the document through dot and writes SVGName into the output
// directory, returning its path. No file is left behind on failure.
func Render(ctx context.Context, doc *Document, opts RenderOptions) (string, error) {
	logger := logging.NewComponentLogger(opts.Logger, "graph")
	binary := strings.TrimSpace(opts.DotBinary)
	if binary == "" {
		binary = "dot"
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create graph output directory: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "-Tsvg")
	cmd.Stdin = strings.NewReader(doc.DOT())
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &RenderError{Binary: binary, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	if stdout.Len() == 0 {
		return "", &RenderError{Binary: binary, Err: errors.New("no output")}
	}

	svgPath := filepath.Join(opts.OutputDir, SVGName)
	if err := os.WriteFile(svgPath, stdout.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write svg: %w", err)
	}
	logger.Info("graph rendered",
		logging.String("svg", svgPath),
		logging.Int("entities", len(doc.Entities)),
		logging.Int("relationships", len(doc.Relationships)),
	)
	return svgPath, nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { margin: 0; padding: 20px; font-family: Arial, sans-serif; background-color: #f5f5f5; }
        .container { max-width: 1200px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #333; text-align: center; }
        #graph-container { width: 100%; overflow: auto; }
        svg { width: 100%; height: auto; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <div id="graph-container">
            {{.SVG}}
        </div>
    </div>
</body>
</html>
`))

// WriteHTML embeds the SVG at svgPath in a standalone page written to
// HTMLName inside outDir.
func WriteHTML(svgPath, outDir string) (string, error) {
	svg, err := os.ReadFile(svgPath)
	if err != nil {
		return "", fmt.Errorf("read svg: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create html output directory: %w", err)
	}
	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Title string
		SVG   template.HTML
	}{
		Title: "Knowledge Graph Visualization",
		SVG:   template.HTML(svg),
	})
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	htmlPath := filepath.Join(outDir, HTMLName)
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write html: %w", err)
	}
	return htmlPath, nil
}
