package persona

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Table is the operator-supplied persona configuration. Topic rules are
// evaluated in file order, first match wins.
type Table struct {
	Topics  []TopicRule       `yaml:"topics"`
	Formats map[string]string `yaml:"formats"`
}

type TopicRule struct {
	Keywords []string `yaml:"keywords"`
	Persona  string   `yaml:"persona"`
}

// LoadTable reads a YAML persona table. A missing path yields an empty
// table, not an error; the built-in pools cover that case.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return Table{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Table{}, nil
		}
		return Table{}, fmt.Errorf("persona table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Table{}, fmt.Errorf("persona table: %w", err)
	}
	return t, nil
}
