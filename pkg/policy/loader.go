package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk policy document.
type File struct {
	Policies []Policy `yaml:"policies"`
}

// LoadYAML parses and validates a policy document. Unknown fields and
// duplicate names are errors.
func LoadYAML(r io.Reader) ([]Policy, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}

	seen := make(map[string]bool, len(f.Policies))
	for i := range f.Policies {
		p := &f.Policies[i]
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("policy #%d: %w", i+1, err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidPolicy, p.Name)
		}
		seen[p.Name] = true
	}
	return f.Policies, nil
}

// LoadFile reads a policy document from path.
func LoadFile(path string) ([]Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open policy file: %w", err)
	}
	defer f.Close()

	policies, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return policies, nil
}

// MarshalYAML renders policies as a policy document.
func MarshalYAML(policies []Policy) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(File{Policies: policies}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
