package serial

import "reflect"

// Identity is implemented by host objects that carry an intrinsic name and
// flag set beyond their declared fields. The walker writes them as the
// reserved "$name" and "$flags" keys and restores them before the fields.
//
// Embedding [HostObject] is the usual way to implement Identity.
type Identity interface {
	IdentityName() string
	SetIdentityName(name string)
	IdentityFlags() uint32
	SetIdentityFlags(flags uint32)
}

// HostObject is an embeddable implementation of [Identity].
type HostObject struct {
	name  string
	flags uint32
}

func (h *HostObject) IdentityName() string          { return h.name }
func (h *HostObject) SetIdentityName(name string)   { h.name = name }
func (h *HostObject) IdentityFlags() uint32         { return h.flags }
func (h *HostObject) SetIdentityFlags(flags uint32) { h.flags = flags }

var identityType = reflect.TypeFor[Identity]()

// identityOf returns the Identity of the addressable struct v, if any.
func identityOf(v reflect.Value) (Identity, bool) {
	if !v.CanAddr() || !reflect.PointerTo(v.Type()).Implements(identityType) {
		return nil, false
	}
	id, ok := v.Addr().Interface().(Identity)
	return id, ok
}

// objectKey identifies a tracked reference within one session. Slices
// include their length so that two slices sharing a backing array but
// viewing different windows stay distinct.
type objectKey struct {
	typ reflect.Type
	ptr uintptr
	n   int
}

// trackKey returns the identity key of v and whether v is tracked at all.
// Non-nil pointers to sized types, non-nil maps and non-empty slices are
// tracked; everything else is a pure value.
func trackKey(v reflect.Value) (objectKey, bool) {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || v.Type().Elem().Size() == 0 {
			return objectKey{}, false
		}
		return objectKey{typ: v.Type(), ptr: v.Pointer()}, true
	case reflect.Map:
		if v.IsNil() {
			return objectKey{}, false
		}
		return objectKey{typ: v.Type(), ptr: v.Pointer()}, true
	case reflect.Slice:
		if v.Len() == 0 {
			return objectKey{}, false
		}
		return objectKey{typ: v.Type(), ptr: v.Pointer(), n: v.Len()}, true
	}
	return objectKey{}, false
}
