package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Serial hooks
	s := NoopSerialHooks{}
	s.OnEncode("*scene.Node", 12, time.Millisecond, nil)
	s.OnDecode("*scene.Node", 12, 1, time.Millisecond, errors.New("boom"))
	s.OnDiagnostic("root.kids[2]", "cannot assign string to *scene.Node")

	// Store hooks
	st := NoopStoreHooks{}
	st.OnGet(ctx, "file", true)
	st.OnPut(ctx, "redis", 1024)
	st.OnDelete(ctx, "mongo")

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnResponse(ctx, "POST", "/v1/check", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Serial().(NoopSerialHooks); !ok {
		t.Error("Serial() should return NoopSerialHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customSerial := &testSerialHooks{}
	SetSerialHooks(customSerial)
	if Serial() != customSerial {
		t.Error("SetSerialHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Serial().(NoopSerialHooks); !ok {
		t.Error("Reset() should restore NoopSerialHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testStoreHooks{}
	SetStoreHooks(custom)

	// Setting nil should be ignored
	SetStoreHooks(nil)

	if Store() != custom {
		t.Error("SetStoreHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testSerialHooks struct{ NoopSerialHooks }
type testStoreHooks struct{ NoopStoreHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
