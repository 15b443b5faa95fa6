package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockBackendProber struct {
	err error
}

func (m *mockBackendProber) Probe(_ context.Context) error { return m.err }

type mockCachePinger struct {
	err error
}

func (m *mockCachePinger) Ping(_ context.Context) error { return m.err }

type mockAnswerChecker struct {
	err error
}

func (m *mockAnswerChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockBackendProber{}, &mockCachePinger{}, &mockAnswerChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["backend"] != CheckOK {
		t.Errorf("expected backend %q, got %q", CheckOK, r.Checks["backend"])
	}
	if r.Checks["cache"] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks["cache"])
	}
	if r.Checks["answer"] != CheckOK {
		t.Errorf("expected answer %q, got %q", CheckOK, r.Checks["answer"])
	}
}

func TestCheck_BackendError(t *testing.T) {
	svc := New(&mockBackendProber{err: errors.New("conn refused")}, &mockCachePinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["backend"] != CheckError {
		t.Errorf("expected backend %q, got %q", CheckError, r.Checks["backend"])
	}
	if r.Checks["cache"] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks["cache"])
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockBackendProber{}, &mockCachePinger{err: errors.New("timeout")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["backend"] != CheckOK {
		t.Errorf("expected backend %q, got %q", CheckOK, r.Checks["backend"])
	}
	if r.Checks["cache"] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks["cache"])
	}
}

func TestCheck_AnswerError(t *testing.T) {
	svc := New(&mockBackendProber{}, nil, &mockAnswerChecker{err: errors.New("401")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["answer"] != CheckError {
		t.Errorf("expected answer %q, got %q", CheckError, r.Checks["answer"])
	}
}

func TestCheck_AllFail(t *testing.T) {
	svc := New(
		&mockBackendProber{err: errors.New("backend down")},
		&mockCachePinger{err: errors.New("cache down")},
		&mockAnswerChecker{err: errors.New("answer down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["backend"] != CheckError {
		t.Error("expected backend error")
	}
	if r.Checks["cache"] != CheckError {
		t.Error("expected cache error")
	}
	if r.Checks["answer"] != CheckError {
		t.Error("expected answer error")
	}
}

func TestCheck_OptionalComponentsAbsent(t *testing.T) {
	svc := New(&mockBackendProber{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["backend"] != CheckOK {
		t.Errorf("expected backend %q, got %q", CheckOK, r.Checks["backend"])
	}
	if _, ok := r.Checks["cache"]; ok {
		t.Error("cache check should be absent when cache is nil")
	}
	if _, ok := r.Checks["answer"]; ok {
		t.Error("answer check should be absent when answer is nil")
	}
}
