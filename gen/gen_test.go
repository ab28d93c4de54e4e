package gen

import (
	"fmt"
	"go/types"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dave/jennifer/jen"
)

var errorType = types.Universe.Lookup("error").Type()

// greeterModel mirrors the contracts the proxy package tests against.
func greeterModel() *PackageModel {
	str := types.Typ[types.String]
	return &PackageModel{
		ImportPath: "example.com/greet",
		Name:       "greet",
		Contracts: []ContractModel{
			{
				Name: "Closer",
				Methods: []MethodModel{
					{Name: "Close", ReturnsErr: true},
				},
			},
			{
				Name:     "Greeter",
				Defaults: "greeterDefaults",
				Methods: []MethodModel{
					{
						Name:       "Greet",
						Params:     []ParamModel{{Name: "name", GoType: str}},
						Results:    []ParamModel{{GoType: str}},
						ReturnsErr: true,
					},
					{
						Name:    "Name",
						Results: []ParamModel{{GoType: str}},
					},
					{
						Name:     "Sum",
						Params:   []ParamModel{{Name: "xs", GoType: types.NewSlice(types.Typ[types.Int])}},
						Results:  []ParamModel{{GoType: types.Typ[types.Int]}},
						Variadic: true,
					},
				},
			},
		},
		Sets: []SetModel{{Contracts: []string{"Greeter", "Closer"}}},
	}
}

func TestGenerate_Model(t *testing.T) {
	code, err := Generate(greeterModel())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, want := range []string{
		"// " + Header,
		"package greet",
		`"github.com/osgifx/console-agent/proxy"`,
		"type greeterProxy struct",
		"*proxy.Base",
		"func (p *closerProxy) Close() (err error)",
		`_, err = p.Invoke(p, "Close")`,
		"func (p *greeterProxy) Greet(a0 string) (r0 string, err error)",
		`out, err := p.Invoke(p, "Greet", a0)`,
		"proxy.Out(out, 0, &r0)",
		"func (p *greeterProxy) Name() (r0 string)",
		`out := p.MustInvoke(p, "Name")`,
		"func (p *greeterProxy) Sum(a0 ...int) (r0 int)",
		"type greeterCloserProxy struct",
		"func (p *greeterCloserProxy) Close() (err error)",
		"func (p *greeterCloserProxy) Sum(a0 ...int) (r0 int)",
		"reflect.TypeFor[Greeter](), reflect.TypeFor[Closer]()",
		"return &greeterCloserProxy{b}",
		"proxy.MustRegisterDefaults[Greeter](greeterDefaults{})",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code is missing %q", want)
		}
	}
	if strings.Contains(code, "greet.Greeter") {
		t.Error("contract types should not be qualified in their own package")
	}

	goldenFile := filepath.Join("testdata", "greet_proxies.go.golden")
	updateGolden(t, goldenFile, code)
	compareGolden(t, goldenFile, code)
}

func TestGenerate_SetMethodOrder(t *testing.T) {
	code, err := Generate(greeterModel())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	i := strings.Index(code, "type greeterCloserProxy struct")
	if i < 0 {
		t.Fatal("missing set stub")
	}
	set := code[i:]
	var last int
	for _, m := range []string{"Close()", "Greet(", "Name()", "Sum("} {
		j := strings.Index(set, "func (p *greeterCloserProxy) "+m)
		if j < last {
			t.Fatalf("method %s out of order in set stub", m)
		}
		last = j
	}
}

func TestGenerate_EmptyModel(t *testing.T) {
	code, err := Generate(&PackageModel{ImportPath: "empty/pkg", Name: "pkg"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(code, "package pkg") {
		t.Error("expected package declaration")
	}
	if strings.Contains(code, "func init()") {
		t.Error("empty model should not register anything")
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PackageModel)
		want   string
	}{
		{"unknown set member", func(m *PackageModel) {
			m.Sets = []SetModel{{Contracts: []string{"Greeter", "Missing"}}}
		}, "unknown contract Missing"},
		{"single member set", func(m *PackageModel) {
			m.Sets = []SetModel{{Contracts: []string{"Greeter"}}}
		}, "at least two"},
		{"unsupported type", func(m *PackageModel) {
			field := types.NewField(0, nil, "X", types.Typ[types.Int], false)
			m.Contracts[0].Methods[0].Params = []ParamModel{
				{GoType: types.NewStruct([]*types.Var{field}, nil)},
			}
		}, "not supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := greeterModel()
			tt.mutate(m)
			_, err := Generate(m)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestTypeCode(t *testing.T) {
	intT := types.Typ[types.Int]
	tests := []struct {
		typ  types.Type
		want string
	}{
		{types.Typ[types.String], "string"},
		{errorType, "error"},
		{types.NewPointer(intT), "*int"},
		{types.NewSlice(types.NewPointer(intT)), "[]*int"},
		{types.NewArray(types.Typ[types.Byte], 4), "[4]uint8"},
		{types.NewArray(types.Universe.Lookup("byte").Type(), 4), "[4]byte"},
		{types.NewMap(types.Typ[types.String], types.NewSlice(intT)), "map[string][]int"},
		{types.NewChan(types.SendRecv, intT), "chan int"},
		{types.NewChan(types.SendOnly, intT), "chan<- int"},
		{types.NewChan(types.RecvOnly, intT), "<-chan int"},
		{types.NewInterfaceType(nil, nil).Complete(), "interface{}"},
		{types.NewStruct(nil, nil), "struct{}"},
		{types.Typ[types.UnsafePointer], "unsafe.Pointer"},
		{
			types.NewSignatureType(nil, nil, nil,
				types.NewTuple(types.NewParam(0, nil, "", types.NewSlice(intT))),
				types.NewTuple(types.NewParam(0, nil, "", errorType)), true),
			"func(...int) error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			tc, err := typeCode(tt.typ)
			if err != nil {
				t.Fatalf("typeCode(%s): %v", tt.typ, err)
			}
			got := strings.TrimSpace(fmt.Sprintf("%#v", jen.Var().Id("x").Add(tc)))
			if got != "var x "+tt.want {
				t.Errorf("got %q, want %q", got, "var x "+tt.want)
			}
		})
	}
}

// Golden file helpers

func updateGolden(t *testing.T, path, content string) {
	t.Helper()
	if os.Getenv("UPDATE_GOLDEN") == "" {
		return
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating testdata dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("updating golden file: %v", err)
	}
}

func compareGolden(t *testing.T, path, got string) {
	t.Helper()
	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Logf("Golden file %s does not exist. Run with UPDATE_GOLDEN=1 to create.", path)
		return
	}
	if err != nil {
		t.Fatalf("reading golden file: %v", err)
	}
	if string(expected) != got {
		t.Errorf("output differs from golden file %s.\nRun with UPDATE_GOLDEN=1 to update.", path)
	}
}
