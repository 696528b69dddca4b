package main

import (
	"os"
	"path/filepath"
	"testing"

	"democap/internal/graph"
	"democap/internal/testsupport"
)

const graphYAML = `entities:
  - id: neuron
    name: Neuron
    description: Signals electrically
  - id: synapse
    name: Synapse
    description: Connects neurons
relationships:
  - source: neuron
    target: synapse
    name: fires across
`

func writeGraphFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "graph.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write graph: %v", err)
	}
	return path
}

func TestGraphCommandRendersSVGAndHTML(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDotStub(testsupport.EchoDot))
	outDir := filepath.Join(env.homeDir, "out")
	input := writeGraphFile(t, env.homeDir, graphYAML)

	out, _, err := runCLI(t, []string{"graph", input, "--output-dir", outDir}, env.configPath)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	svgPath := filepath.Join(outDir, graph.SVGName)
	htmlPath := filepath.Join(outDir, graph.HTMLName)
	requireContains(t, out, "SVG:  "+svgPath)
	requireContains(t, out, "HTML: "+htmlPath)

	page, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	requireContains(t, string(page), "fires across")
}

func TestGraphCommandDefaultsToConfiguredOutputDir(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDotStub(testsupport.EchoDot))
	input := writeGraphFile(t, env.homeDir, graphYAML)

	if _, _, err := runCLI(t, []string{"graph", input}, env.configPath); err != nil {
		t.Fatalf("graph: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.GraphOutputDir, graph.SVGName)); err != nil {
		t.Fatalf("expected svg in configured dir: %v", err)
	}
}

func TestGraphCommandPrintsDOT(t *testing.T) {
	env := setupCLITestEnv(t)
	input := writeGraphFile(t, env.homeDir, graphYAML)

	out, _, err := runCLI(t, []string{"graph", input, "--dot"}, env.configPath)
	if err != nil {
		t.Fatalf("graph --dot: %v", err)
	}
	requireContains(t, out, "digraph")
	requireContains(t, out, `label="Synapse"`)
}

func TestGraphCommandRejectsInvalidDocument(t *testing.T) {
	env := setupCLITestEnv(t)
	input := writeGraphFile(t, env.homeDir, "entities:\n  - id: lonely\n")

	_, _, err := runCLI(t, []string{"graph", input}, env.configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	requireContains(t, err.Error(), "missing relationships")
}
