package mirror

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osgifx/console-agent/proxy"
)

// errNoKey reports a key the mapping cannot hold at all, as opposed to one
// that is merely unset.
var errNoKey = errors.New("no such key")

// keyed is a string-keyed mapping a projection can read and write as bean
// properties.
type keyed interface {
	get(key string) (any, error)
	set(key string, value any) error
}

func keyedOf(x any) (keyed, bool) {
	switch x := x.(type) {
	case *structpb.Struct:
		return structMap{x}, x != nil
	case proto.Message:
		return protoMap{x.ProtoReflect()}, x.ProtoReflect().IsValid()
	}
	rv := reflect.ValueOf(x)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		return goMap{rv}, true
	}
	return nil, false
}

// mapping answers m with the bean convention when v wraps a mapping: GetX
// and IsX without arguments read key x, SetX with one argument writes it.
func (v Value) mapping(m *proxy.Method, args []any) (out []any, ok bool, err error) {
	if v.typeOnly {
		return nil, false, nil
	}
	km, isMap := keyedOf(v.Get())
	if !isMap {
		return nil, false, nil
	}

	switch {
	case len(args) == 0:
		key := property(m.Name, "Get", "get", "Is", "is")
		if key == "" {
			return nil, false, nil
		}
		x, err := km.get(key)
		if errors.Is(err, errNoKey) {
			return nil, false, nil
		}
		if err != nil {
			return nil, true, fail(ErrInvocation, "get", key, v.cls(), nil, err)
		}
		if len(m.Out) == 0 {
			return nil, true, nil
		}
		return []any{x}, true, nil
	case len(args) == 1:
		key := property(m.Name, "Set", "set")
		if key == "" {
			return nil, false, nil
		}
		err := km.set(key, args[0])
		if errors.Is(err, errNoKey) {
			return nil, false, nil
		}
		if err != nil {
			return nil, true, fail(ErrInvocation, "set", key, v.cls(), nil, err)
		}
		return make([]any, len(m.Out)), true, nil
	}
	return nil, false, nil
}

// property strips the first matching prefix and lower-cases the first
// letter of the rest: GetName becomes name.
func property(method string, prefixes ...string) string {
	for _, p := range prefixes {
		rest, found := strings.CutPrefix(method, p)
		if !found || rest == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(rest)
		return string(unicode.ToLower(r)) + rest[size:]
	}
	return ""
}

type goMap struct{ m reflect.Value }

func (g goMap) get(key string) (any, error) {
	e := g.m.MapIndex(reflect.ValueOf(key).Convert(g.m.Type().Key()))
	if !e.IsValid() {
		return nil, nil
	}
	return e.Interface(), nil
}

func (g goMap) set(key string, value any) error {
	if g.m.IsNil() {
		return fmt.Errorf("nil %s", g.m.Type())
	}
	x, err := convertArg(value, g.m.Type().Elem())
	if err != nil {
		return err
	}
	g.m.SetMapIndex(reflect.ValueOf(key).Convert(g.m.Type().Key()), x)
	return nil
}

type structMap struct{ s *structpb.Struct }

func (sm structMap) get(key string) (any, error) {
	f, ok := sm.s.GetFields()[key]
	if !ok {
		return nil, nil
	}
	return f.AsInterface(), nil
}

func (sm structMap) set(key string, value any) error {
	pv, err := structpb.NewValue(value)
	if err != nil {
		return err
	}
	if sm.s.Fields == nil {
		sm.s.Fields = make(map[string]*structpb.Value)
	}
	sm.s.Fields[key] = pv
	return nil
}

// protoMap addresses the fields of a message by proto or JSON name.
type protoMap struct{ m protoreflect.Message }

func (pm protoMap) field(key string) (protoreflect.FieldDescriptor, error) {
	fields := pm.m.Descriptor().Fields()
	if fd := fields.ByName(protoreflect.Name(key)); fd != nil {
		return fd, nil
	}
	if fd := fields.ByJSONName(key); fd != nil {
		return fd, nil
	}
	return nil, fmt.Errorf("%s field %q: %w", pm.m.Descriptor().FullName(), key, errNoKey)
}

func (pm protoMap) get(key string) (any, error) {
	fd, err := pm.field(key)
	if err != nil {
		return nil, err
	}
	pv := pm.m.Get(fd)
	if fd.Message() != nil && !fd.IsList() && !fd.IsMap() {
		if !pm.m.Has(fd) {
			return nil, nil
		}
		return pv.Message().Interface(), nil
	}
	return pv.Interface(), nil
}

func (pm protoMap) set(key string, value any) (err error) {
	fd, err := pm.field(key)
	if err != nil {
		return err
	}
	if fd.IsList() || fd.IsMap() {
		return fmt.Errorf("field %s: repeated fields are read-only", fd.FullName())
	}
	if value == nil {
		pm.m.Clear(fd)
		return nil
	}
	pv, err := protoValue(fd, value)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("field %s: %v", fd.FullName(), r)
		}
	}()
	pm.m.Set(fd, pv)
	return nil
}

var protoKinds = map[protoreflect.Kind]reflect.Type{
	protoreflect.BoolKind:     reflect.TypeFor[bool](),
	protoreflect.EnumKind:     reflect.TypeFor[protoreflect.EnumNumber](),
	protoreflect.Int32Kind:    reflect.TypeFor[int32](),
	protoreflect.Sint32Kind:   reflect.TypeFor[int32](),
	protoreflect.Sfixed32Kind: reflect.TypeFor[int32](),
	protoreflect.Int64Kind:    reflect.TypeFor[int64](),
	protoreflect.Sint64Kind:   reflect.TypeFor[int64](),
	protoreflect.Sfixed64Kind: reflect.TypeFor[int64](),
	protoreflect.Uint32Kind:   reflect.TypeFor[uint32](),
	protoreflect.Fixed32Kind:  reflect.TypeFor[uint32](),
	protoreflect.Uint64Kind:   reflect.TypeFor[uint64](),
	protoreflect.Fixed64Kind:  reflect.TypeFor[uint64](),
	protoreflect.FloatKind:    reflect.TypeFor[float32](),
	protoreflect.DoubleKind:   reflect.TypeFor[float64](),
	protoreflect.StringKind:   reflect.TypeFor[string](),
	protoreflect.BytesKind:    reflect.TypeFor[[]byte](),
}

// protoValue converts value to the Go representation of fd's kind.
func protoValue(fd protoreflect.FieldDescriptor, value any) (protoreflect.Value, error) {
	if fd.Kind() == protoreflect.MessageKind || fd.Kind() == protoreflect.GroupKind {
		msg, ok := value.(proto.Message)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("field %s: %T is not a message", fd.FullName(), value)
		}
		return protoreflect.ValueOfMessage(msg.ProtoReflect()), nil
	}
	t, ok := protoKinds[fd.Kind()]
	if !ok {
		return protoreflect.Value{}, fmt.Errorf("field %s: unsupported kind %s", fd.FullName(), fd.Kind())
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.Type().ConvertibleTo(t) || (rv.Kind() == reflect.String) != (t.Kind() == reflect.String) {
		return protoreflect.Value{}, fmt.Errorf("field %s: cannot use %T as %s", fd.FullName(), value, fd.Kind())
	}
	return protoreflect.ValueOf(rv.Convert(t).Interface()), nil
}
