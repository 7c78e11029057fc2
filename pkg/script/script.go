package script

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script is a named sequence of list operations.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one operation on a named list, plus what its result must look like.
type Step struct {
	Op    string `yaml:"op"`
	List  string `yaml:"list"`
	Other string `yaml:"other"` // second list of concat
	Item  string `yaml:"item"`

	// search only
	Expr string `yaml:"expr"`
	Arg  string `yaml:"arg"`

	Expect      *string `yaml:"expect"`
	ExpectNone  bool    `yaml:"expect_none"`
	ExpectErr   string  `yaml:"expect_err"` // "exhausted", "stale", "self" or "foreign"
	ExpectCount *int    `yaml:"expect_count"`
	ExpectFreed *int    `yaml:"expect_freed"`
	ExpectPos   string  `yaml:"expect_pos"`
}

// Parse decodes a script. Unknown fields are rejected.
func Parse(b []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	s := new(Script)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	for i, st := range s.Steps {
		if len(st.Op) == 0 {
			return nil, fmt.Errorf("step #%d has no op", i)
		}
	}
	return s, nil
}

// Load reads a script file. A script without a name is named after its file.
func Load(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(s.Name) == 0 {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}
