// Package gen introspects Go interfaces and generates proxy stubs for them.
package gen

import "go/types"

// PackageModel is the set of contracts of one package that get stubs.
type PackageModel struct {
	ImportPath string
	Name       string // short package name (e.g., "shell")
	Contracts  []ContractModel
	Sets       []SetModel
}

// ContractModel represents an exported interface type.
type ContractModel struct {
	Name     string
	GoType   types.Type
	Methods  []MethodModel // full method set, sorted by name
	Defaults string        // optional defaults companion type
}

// SetModel is a stub implementing several contracts at once.
// The first contract is the primary one.
type SetModel struct {
	Contracts []string
}

// MethodModel represents one contract method.
type MethodModel struct {
	Name       string
	Params     []ParamModel
	Results    []ParamModel // without the trailing error
	Variadic   bool
	ReturnsErr bool // true if last result is error
}

// ParamModel represents a method parameter or result.
type ParamModel struct {
	Name    string
	GoType  types.Type
	TypeStr string // human-readable type string (e.g., "io.Reader")
}

// Contract returns the contract named name, or nil.
func (m *PackageModel) Contract(name string) *ContractModel {
	for i := range m.Contracts {
		if m.Contracts[i].Name == name {
			return &m.Contracts[i]
		}
	}
	return nil
}
