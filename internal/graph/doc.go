// Package graph renders YAML knowledge graph definitions to SVG through
// Graphviz and wraps the result in a standalone HTML page.
package graph
