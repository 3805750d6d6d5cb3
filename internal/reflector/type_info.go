// Package reflector derives stable names for Go types. Event types that do
// not name themselves are registered and persisted under these names.
package reflector

import (
	"path"
	"reflect"
	"sync"
)

type TypeInfo struct {
	// Name is the fully qualified name, "module/pkg.Type".
	Name string
	// ShortName is the package local name, "pkg.Type".
	ShortName string
	Type      reflect.Type
}

var cache sync.Map // reflect.Type -> TypeInfo

// TypeInfoOf returns the info for the dynamic type of x. Pointers are
// unwrapped so *T and T share one name.
func TypeInfoOf(x any) TypeInfo {
	return TypeInfoForType(reflect.TypeOf(x))
}

func TypeInfoFor[T any]() TypeInfo {
	return TypeInfoForType(reflect.TypeFor[T]())
}

func TypeInfoForType(t reflect.Type) TypeInfo {
	if t == nil {
		return TypeInfo{}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if ti, ok := cache.Load(t); ok {
		return ti.(TypeInfo)
	}

	ti := TypeInfo{Type: t, Name: t.String(), ShortName: t.String()}
	if pkg := t.PkgPath(); pkg != "" {
		ti.Name = pkg + "." + t.Name()
		ti.ShortName = path.Base(pkg) + "." + t.Name()
	}
	actual, _ := cache.LoadOrStore(t, ti)
	return actual.(TypeInfo)
}
