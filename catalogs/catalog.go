package catalogs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dataset is one schema an agent may query, with the hints that go into
// its prompt.
type Dataset struct {
	Name               string            `yaml:"name"`
	Project            string            `yaml:"project"`
	ID                 string            `yaml:"id"`
	Description        string            `yaml:"description"`
	SampleQuestions    []string          `yaml:"sample_questions"`
	Tables             []string          `yaml:"tables"`
	ColumnDescriptions map[string]string `yaml:"column_descriptions"`
}

type Catalog struct {
	Datasets []Dataset `yaml:"datasets"`
}

func Parse(content []byte) (*Catalog, error) {
	var catalog Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	seen := make(map[string]bool)
	for i, dataset := range catalog.Datasets {
		if dataset.ID == "" {
			return nil, fmt.Errorf("dataset %d: empty id", i)
		}
		if seen[dataset.ID] {
			return nil, fmt.Errorf("dataset %s: duplicated id", dataset.ID)
		}
		seen[dataset.ID] = true
		if dataset.Name == "" {
			catalog.Datasets[i].Name = dataset.ID
		}
	}
	return &catalog, nil
}

func Load(path string) (*Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	catalog, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

func (c *Catalog) Dataset(id string) (Dataset, bool) {
	for _, dataset := range c.Datasets {
		if dataset.ID == id {
			return dataset, true
		}
	}
	return Dataset{}, false
}

// ExampleQueries are starter statements for every table of the dataset.
func (d Dataset) ExampleQueries() []string {
	ret := make([]string, 0, len(d.Tables))
	for _, table := range d.Tables {
		ret = append(ret, fmt.Sprintf("SELECT * FROM %q.%q LIMIT 100", d.ID, table))
	}
	return ret
}

func (d Dataset) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", d.Name, d.ID)
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n", d.Description)
	}
	if len(d.Tables) > 0 {
		fmt.Fprintf(&b, "tables: %s\n", strings.Join(d.Tables, ", "))
	}
	if queries := d.ExampleQueries(); len(queries) > 0 {
		b.WriteString("example queries:\n")
		for _, q := range queries {
			fmt.Fprintf(&b, "  %s\n", q)
		}
	}
	if len(d.SampleQuestions) > 0 {
		b.WriteString("sample questions:\n")
		for _, q := range d.SampleQuestions {
			fmt.Fprintf(&b, "  - %s\n", q)
		}
	}
	return b.String()
}
