package graph

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entity is one node of the knowledge graph.
type Entity struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Relationship is a labelled, directed edge between two entity ids.
type Relationship struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Name   string `yaml:"name"`
}

// Document is a parsed knowledge graph definition.
type Document struct {
	Entities      []Entity       `yaml:"entities"`
	Relationships []Relationship `yaml:"relationships"`
}

// ValidationError lists every problem found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid knowledge graph: " + strings.Join(e.Problems, "; ")
}

// Parse decodes a YAML document and checks that every required key is
// present. Present keys may hold empty values.
func Parse(r io.Reader) (*Document, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Problems: []string{"document is empty"}}
		}
		return nil, fmt.Errorf("parse knowledge graph: %w", err)
	}
	var doc Document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse knowledge graph: %w", err)
	}
	if problems := checkKeys(&root); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return &doc, nil
}

// Load parses the YAML file at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge graph: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

var (
	entityKeys       = []string{"id", "name", "description"}
	relationshipKeys = []string{"source", "target", "name"}
)

// checkKeys reports absent sections and entries lacking a required key.
// Relationships may reference ids that no entity declares.
func checkKeys(root *yaml.Node) []string {
	body := root
	if body.Kind == yaml.DocumentNode && len(body.Content) > 0 {
		body = body.Content[0]
	}
	sections := mappingKeys(body)
	var problems []string
	for _, section := range []struct {
		key, owner string
		required   []string
	}{
		{"entities", "entity", entityKeys},
		{"relationships", "relationship", relationshipKeys},
	} {
		node, ok := sections[section.key]
		if !ok || isNull(node) {
			problems = append(problems, "missing "+section.key)
			continue
		}
		for i, item := range node.Content {
			present := mappingKeys(item)
			for _, key := range section.required {
				if _, ok := present[key]; !ok {
					problems = append(problems, fmt.Sprintf("%s %d: missing %s", section.owner, i, key))
				}
			}
		}
	}
	return problems
}

// mappingKeys indexes a mapping node's values by key; other kinds yield nil.
func mappingKeys(node *yaml.Node) map[string]*yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	keys := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys[node.Content[i].Value] = node.Content[i+1]
	}
	return keys
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}
