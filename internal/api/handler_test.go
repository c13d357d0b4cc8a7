package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/kernel"
	syscallpkg "github.com/nidhogg/cogkernel/internal/syscall"
)

func newTestHandler(t *testing.T) (*Handler, *kernel.Kernel) {
	k, err := kernel.New(kernel.Config{NodeID: "node-a"}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error constructing kernel: %v", err)
	}
	return NewHandler(k, nil, zap.NewNop()), k
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListProcesses(t *testing.T) {
	h, k := newTestHandler(t)
	k.Syscall(0, syscallpkg.SpawnAgent, map[string]any{"name": "A"})

	req := httptest.NewRequest(http.MethodGet, "/api/ps", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var procs []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &procs); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(procs) != 1 {
		t.Fatalf("expected 1 process, got %d", len(procs))
	}
}

func TestOpenMissingPathReturns404(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/open/proc/999", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestOpenAtomspaceReturns200(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/open/atomspace", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDebugSyscallUnknownNameIsENOSYS(t *testing.T) {
	h, k := newTestHandler(t)
	res := k.Syscall(0, syscallpkg.SpawnAgent, map[string]any{"name": "A"})
	pid := res.Data.(map[string]any)["pid"].(int)

	body := strings.NewReader(`{"pid": ` + itoa(pid) + `, "name": "not_a_real_syscall"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/debug/syscall", body)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 (the result carries the errno), got %d", rec.Code)
	}
	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if result["Errno"] != string(syscallpkg.ENOSYS) {
		t.Fatalf("expected ENOSYS, got %+v", result)
	}
}

func TestSemanticQueryUnconfiguredReturns503(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/semantic_query?q=hello", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
