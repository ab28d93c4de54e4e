package gen

import (
	"fmt"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// IntrospectPackage loads a Go package and returns the model of its exported
// interfaces. The includeFilter, if non-nil, restricts which names are
// included; a name in the filter that is not an interface is an error.
func IntrospectPackage(pattern string, includeFilter map[string]bool) (*PackageModel, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", pattern, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for %s", pattern)
	}
	if len(pkgs) > 1 {
		return nil, fmt.Errorf("pattern %s matches %d packages", pattern, len(pkgs))
	}
	if len(pkgs[0].Errors) > 0 {
		return nil, fmt.Errorf("package errors: %v", pkgs[0].Errors)
	}

	pkg := pkgs[0]
	if pkg.Types == nil {
		return nil, fmt.Errorf("type information not available for %s", pattern)
	}

	model := &PackageModel{
		ImportPath: pkg.PkgPath,
		Name:       pkg.Name,
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		if includeFilter != nil && !includeFilter[name] {
			continue
		}
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() {
			if includeFilter != nil {
				return nil, fmt.Errorf("%s.%s is not an exported type", pkg.PkgPath, name)
			}
			continue
		}
		cm, err := extractContract(tn)
		if err != nil {
			if includeFilter != nil {
				return nil, err
			}
			continue
		}
		model.Contracts = append(model.Contracts, *cm)
	}

	for name := range includeFilter {
		if model.Contract(name) == nil {
			return nil, fmt.Errorf("%s.%s not found", pkg.PkgPath, name)
		}
	}
	return model, nil
}

func extractContract(tn *types.TypeName) (*ContractModel, error) {
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("%s is not a defined type", tn.Name())
	}
	if named.TypeParams().Len() > 0 {
		return nil, fmt.Errorf("%s is generic", tn.Name())
	}
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		return nil, fmt.Errorf("%s is not an interface", tn.Name())
	}
	if !iface.IsMethodSet() {
		return nil, fmt.Errorf("%s is a type constraint", tn.Name())
	}

	cm := &ContractModel{
		Name:   tn.Name(),
		GoType: named,
	}
	// The method set includes embedded interfaces, ordered by Id.
	for i := 0; i < iface.NumMethods(); i++ {
		fn := iface.Method(i)
		if !fn.Exported() && fn.Pkg() != tn.Pkg() {
			return nil, fmt.Errorf("%s.%s is unexported in another package", tn.Name(), fn.Name())
		}
		sig := fn.Type().(*types.Signature)
		cm.Methods = append(cm.Methods, methodModelFromSig(fn.Name(), sig, tn.Pkg()))
	}
	return cm, nil
}

func methodModelFromSig(name string, sig *types.Signature, pkg *types.Package) MethodModel {
	mm := MethodModel{
		Name:     name,
		Variadic: sig.Variadic(),
	}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		mm.Params = append(mm.Params, ParamModel{
			Name:    p.Name(),
			GoType:  p.Type(),
			TypeStr: types.TypeString(p.Type(), qualifier(pkg)),
		})
	}

	results := sig.Results()
	n := results.Len()
	if n > 0 && isErrorType(results.At(n-1).Type()) {
		mm.ReturnsErr = true
		n--
	}
	for i := 0; i < n; i++ {
		r := results.At(i)
		mm.Results = append(mm.Results, ParamModel{
			Name:    r.Name(),
			GoType:  r.Type(),
			TypeStr: types.TypeString(r.Type(), qualifier(pkg)),
		})
	}
	return mm
}

func isErrorType(t types.Type) bool {
	named, ok := types.Unalias(t).(*types.Named)
	return ok && named.Obj().Pkg() == nil && named.Obj().Name() == "error"
}

func qualifier(pkg *types.Package) types.Qualifier {
	return func(other *types.Package) string {
		if other == pkg {
			return ""
		}
		return other.Name()
	}
}
