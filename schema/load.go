package schema

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/syssam/graphcache/schema/edge"
)

// File is the YAML representation of a schema graph.
//
//	types:
//	  - name: Author
//	    fields: [name]
//	    edges:
//	      - name: books
//	        type: Book
//	  - name: Book
//	    fields: [title, author_id]
//	    edges:
//	      - name: author
//	        type: Author
//	        from: true
//	        ref: books
//	        field: author_id
//	        unique: true
type File struct {
	Types []TypeSpec `yaml:"types"`
}

// TypeSpec is the YAML representation of a Type.
type TypeSpec struct {
	Name   string     `yaml:"name"`
	Table  string     `yaml:"table,omitempty"`
	ID     string     `yaml:"id,omitempty"`
	Fields []string   `yaml:"fields,omitempty"`
	Edges  []EdgeSpec `yaml:"edges,omitempty"`
}

// EdgeSpec is the YAML representation of a relationship.
type EdgeSpec struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	From    bool   `yaml:"from,omitempty"`
	Unique  bool   `yaml:"unique,omitempty"`
	Field   string `yaml:"field,omitempty"`
	Ref     string `yaml:"ref,omitempty"`
	Comment string `yaml:"comment,omitempty"`
}

// typeName upper-cases the first letter of type names, so "author" and
// "Author" in a schema file denote the same type. Casers are stateful and
// not shared.
func typeName(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// Load reads a YAML schema and builds its graph.
func Load(r io.Reader) (*Graph, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	return f.Graph()
}

// LoadFile reads a YAML schema file and builds its graph.
func LoadFile(path string) (*Graph, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	defer fd.Close()
	return Load(fd)
}

// Graph builds the graph described by the file.
func (f *File) Graph() (*Graph, error) {
	types := make([]*Type, 0, len(f.Types))
	for _, ts := range f.Types {
		var edges []*edge.Builder
		for _, es := range ts.Edges {
			var b *edge.Builder
			if es.From {
				b = edge.From(es.Name, typeName(es.Type))
			} else {
				b = edge.To(es.Name, typeName(es.Type))
			}
			if es.Unique {
				b.Unique()
			}
			edges = append(edges, b.Field(es.Field).Ref(es.Ref).Comment(es.Comment))
		}
		types = append(types, NewType(typeName(ts.Name),
			Table(ts.Table),
			ID(ts.ID),
			Fields(ts.Fields...),
			Edges(edges...),
		))
	}
	return NewGraph(types...)
}
