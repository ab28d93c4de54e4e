package gen

import (
	"bytes"
	"fmt"
	"go/types"
	"sort"

	"github.com/dave/jennifer/jen"
)

// ProxyPath is the import path of the proxy runtime the stubs build on.
const ProxyPath = "github.com/osgifx/console-agent/proxy"

// Header is the first line of every generated file.
const Header = "Code generated by proxygen. DO NOT EDIT."

// stubPlan is one stub type to emit.
type stubPlan struct {
	name      string
	contracts []*ContractModel
	methods   []MethodModel
}

// Generate renders the stubs of model as Go source in model's package.
// Each contract gets its own stub; each set gets a stub implementing all of
// its contracts.
func Generate(model *PackageModel) (string, error) {
	plans, err := planStubs(model)
	if err != nil {
		return "", err
	}

	f := jen.NewFilePathName(model.ImportPath, model.Name)
	f.HeaderComment(Header)
	f.ImportName(ProxyPath, "proxy")

	var regs []jen.Code
	for _, p := range plans {
		if err := generateStub(f, p); err != nil {
			return "", fmt.Errorf("stub %s: %w", p.name, err)
		}
		regs = append(regs, registration(model, p))
	}
	for _, c := range model.Contracts {
		if c.Defaults == "" {
			continue
		}
		regs = append(regs, jen.Qual(ProxyPath, "MustRegisterDefaults").
			Types(jen.Qual(model.ImportPath, c.Name)).
			Call(jen.Id(c.Defaults).Values()))
	}
	if len(regs) > 0 {
		f.Func().Id("init").Params().Block(regs...)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering %s: %w", model.ImportPath, err)
	}
	return buf.String(), nil
}

func planStubs(model *PackageModel) ([]stubPlan, error) {
	var plans []stubPlan
	for i := range model.Contracts {
		c := &model.Contracts[i]
		plans = append(plans, stubPlan{
			name:      StubName(c.Name),
			contracts: []*ContractModel{c},
			methods:   c.Methods,
		})
	}
	for _, s := range model.Sets {
		if len(s.Contracts) < 2 {
			return nil, fmt.Errorf("set %v needs at least two contracts", s.Contracts)
		}
		p := stubPlan{name: StubName(s.Contracts...)}
		seen := make(map[string]bool)
		for _, name := range s.Contracts {
			c := model.Contract(name)
			if c == nil {
				return nil, fmt.Errorf("set %v: unknown contract %s", s.Contracts, name)
			}
			p.contracts = append(p.contracts, c)
			for _, m := range c.Methods {
				if !seen[m.Name] {
					seen[m.Name] = true
					p.methods = append(p.methods, m)
				}
			}
		}
		sort.Slice(p.methods, func(i, j int) bool {
			return p.methods[i].Name < p.methods[j].Name
		})
		plans = append(plans, p)
	}
	return plans, nil
}

func generateStub(f *jen.File, p stubPlan) error {
	f.Type().Id(p.name).Struct(jen.Op("*").Qual(ProxyPath, "Base"))
	f.Line()
	for _, m := range p.methods {
		params, err := paramList(m)
		if err != nil {
			return fmt.Errorf("%s: %w", m.Name, err)
		}
		results, err := resultList(m)
		if err != nil {
			return fmt.Errorf("%s: %w", m.Name, err)
		}
		sig := f.Func().Params(jen.Id("p").Op("*").Id(p.name)).Id(m.Name).Params(params...)
		if len(results) > 0 {
			sig.Params(results...)
		}
		sig.Block(methodBody(m)...)
		f.Line()
	}
	return nil
}

func paramList(m MethodModel) ([]jen.Code, error) {
	var out []jen.Code
	for i, p := range m.Params {
		t := p.GoType
		id := jen.Id(fmt.Sprintf("a%d", i))
		if m.Variadic && i == len(m.Params)-1 {
			t = t.(*types.Slice).Elem()
			id.Op("...")
		}
		tc, err := typeCode(t)
		if err != nil {
			return nil, err
		}
		out = append(out, id.Add(tc))
	}
	return out, nil
}

func resultList(m MethodModel) ([]jen.Code, error) {
	var out []jen.Code
	for i, r := range m.Results {
		tc, err := typeCode(r.GoType)
		if err != nil {
			return nil, err
		}
		out = append(out, jen.Id(fmt.Sprintf("r%d", i)).Add(tc))
	}
	if m.ReturnsErr {
		out = append(out, jen.Err().Error())
	}
	return out, nil
}

// methodBody forwards to Base.Invoke, or Base.MustInvoke when the method
// has no error result.
func methodBody(m MethodModel) []jen.Code {
	args := []jen.Code{jen.Id("p"), jen.Lit(m.Name)}
	for i := range m.Params {
		args = append(args, jen.Id(fmt.Sprintf("a%d", i)))
	}

	var outs []jen.Code
	for i := range m.Results {
		outs = append(outs, jen.Qual(ProxyPath, "Out").Call(
			jen.Id("out"), jen.Lit(i), jen.Op("&").Id(fmt.Sprintf("r%d", i))))
	}

	switch {
	case !m.ReturnsErr && len(m.Results) == 0:
		return []jen.Code{jen.Id("p").Dot("MustInvoke").Call(args...)}
	case m.ReturnsErr && len(m.Results) == 0:
		return []jen.Code{
			jen.List(jen.Id("_"), jen.Err()).Op("=").Id("p").Dot("Invoke").Call(args...),
			jen.Return(),
		}
	case !m.ReturnsErr:
		body := []jen.Code{jen.Id("out").Op(":=").Id("p").Dot("MustInvoke").Call(args...)}
		body = append(body, outs...)
		return append(body, jen.Return())
	default:
		body := []jen.Code{
			jen.List(jen.Id("out"), jen.Err()).Op(":=").Id("p").Dot("Invoke").Call(args...),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return()),
		}
		body = append(body, outs...)
		return append(body, jen.Return())
	}
}

func registration(model *PackageModel, p stubPlan) jen.Code {
	args := []jen.Code{
		jen.Func().Params(jen.Id("b").Op("*").Qual(ProxyPath, "Base")).Any().Block(
			jen.Return(jen.Op("&").Id(p.name).Values(jen.Id("b"))),
		),
	}
	for _, c := range p.contracts {
		args = append(args, jen.Qual("reflect", "TypeFor").Types(jen.Qual(model.ImportPath, c.Name)).Call())
	}
	return jen.Qual(ProxyPath, "Register").Call(args...)
}

// typeCode renders t with package-qualified names.
func typeCode(t types.Type) (jen.Code, error) {
	switch t := t.(type) {
	case *types.Alias:
		obj := t.Obj()
		if obj.Pkg() == nil {
			return jen.Id(obj.Name()), nil
		}
		if t.TypeArgs().Len() > 0 {
			return typeCode(types.Unalias(t))
		}
		return jen.Qual(obj.Pkg().Path(), obj.Name()), nil

	case *types.Basic:
		if t.Kind() == types.UnsafePointer {
			return jen.Qual("unsafe", "Pointer"), nil
		}
		return jen.Id(t.Name()), nil

	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() == nil {
			return jen.Id(obj.Name()), nil
		}
		s := jen.Qual(obj.Pkg().Path(), obj.Name())
		if t.TypeArgs().Len() > 0 {
			var targs []jen.Code
			for i := 0; i < t.TypeArgs().Len(); i++ {
				tc, err := typeCode(t.TypeArgs().At(i))
				if err != nil {
					return nil, err
				}
				targs = append(targs, tc)
			}
			s.Types(targs...)
		}
		return s, nil

	case *types.Pointer:
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(elem), nil

	case *types.Slice:
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Index().Add(elem), nil

	case *types.Array:
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Index(jen.Lit(int(t.Len()))).Add(elem), nil

	case *types.Map:
		key, err := typeCode(t.Key())
		if err != nil {
			return nil, err
		}
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Map(key).Add(elem), nil

	case *types.Chan:
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		switch t.Dir() {
		case types.SendOnly:
			return jen.Chan().Op("<-").Add(elem), nil
		case types.RecvOnly:
			return jen.Op("<-").Chan().Add(elem), nil
		}
		return jen.Chan().Add(elem), nil

	case *types.Signature:
		var params, results []jen.Code
		for i := 0; i < t.Params().Len(); i++ {
			pt := t.Params().At(i).Type()
			variadic := t.Variadic() && i == t.Params().Len()-1
			if variadic {
				pt = pt.(*types.Slice).Elem()
			}
			tc, err := typeCode(pt)
			if err != nil {
				return nil, err
			}
			if variadic {
				tc = jen.Op("...").Add(tc)
			}
			params = append(params, tc)
		}
		for i := 0; i < t.Results().Len(); i++ {
			tc, err := typeCode(t.Results().At(i).Type())
			if err != nil {
				return nil, err
			}
			results = append(results, tc)
		}
		return jen.Func().Params(params...).Params(results...), nil

	case *types.Interface:
		if t.Empty() {
			return jen.Interface(), nil
		}
		return nil, fmt.Errorf("unnamed interface type %s is not supported", t)

	case *types.Struct:
		if t.NumFields() == 0 {
			return jen.Struct(), nil
		}
		return nil, fmt.Errorf("unnamed struct type %s is not supported", t)
	}
	return nil, fmt.Errorf("type %s is not supported", t)
}
