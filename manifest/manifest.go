// Package manifest handles proxygen.toml stub generator configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file.
const FileName = "proxygen.toml"

// Manifest represents a proxygen.toml configuration.
type Manifest struct {
	Package   Package    `toml:"package"`
	Contracts []Contract `toml:"contracts"`
	Sets      []Set      `toml:"sets"`

	// Dir is the directory containing the proxygen.toml file (set at load time).
	Dir string `toml:"-"`
}

// Package names the package holding the contracts and the output file.
type Package struct {
	Import string `toml:"import"`
	Output string `toml:"output"`
}

// Contract selects one interface to generate a stub for.
type Contract struct {
	Name     string `toml:"name"`
	Defaults string `toml:"defaults"` // companion type with default method bodies
}

// Set asks for a stub implementing several contracts at once.
type Set struct {
	Primary string   `toml:"primary"`
	Extra   []string `toml:"extra"`
}

// Load parses a proxygen.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses a configuration file at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	// Defaults
	if m.Package.Import == "" {
		m.Package.Import = m.Dir
	}
	if m.Package.Output == "" {
		m.Package.Output = "proxies_gen.go"
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	seen := make(map[string]bool)
	for i, c := range m.Contracts {
		if c.Name == "" {
			return fmt.Errorf("contracts[%d]: missing name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("contract %s listed twice", c.Name)
		}
		seen[c.Name] = true
	}
	for i, s := range m.Sets {
		if s.Primary == "" {
			return fmt.Errorf("sets[%d]: missing primary", i)
		}
		if len(s.Extra) == 0 {
			return fmt.Errorf("sets[%d]: %s has no extra contracts", i, s.Primary)
		}
	}
	return nil
}

// FindAndLoad walks up from startDir to find a proxygen.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// OutputPath returns the absolute path of the generated file.
func (m *Manifest) OutputPath() string {
	if filepath.IsAbs(m.Package.Output) {
		return m.Package.Output
	}
	return filepath.Join(m.Dir, m.Package.Output)
}

// Include returns the contract filter for introspection: every contract and
// every set member. It is nil when the manifest names no contracts, meaning
// all interfaces of the package.
func (m *Manifest) Include() map[string]bool {
	if len(m.Contracts) == 0 && len(m.Sets) == 0 {
		return nil
	}
	include := make(map[string]bool)
	for _, c := range m.Contracts {
		include[c.Name] = true
	}
	for _, s := range m.Sets {
		include[s.Primary] = true
		for _, e := range s.Extra {
			include[e] = true
		}
	}
	return include
}

// Defaults returns the defaults companion configured per contract.
func (m *Manifest) Defaults() map[string]string {
	out := make(map[string]string)
	for _, c := range m.Contracts {
		if c.Defaults != "" {
			out[c.Name] = c.Defaults
		}
	}
	return out
}
