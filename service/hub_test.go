package service

import (
	"errors"
	"testing"
)

type fakeService struct {
	name    string
	deps    []string
	log     *[]string
	initErr error
	stopErr error
	args    []any
}

func (f *fakeService) Name() string           { return f.name }
func (f *fakeService) Dependencies() []string { return f.deps }
func (f *fakeService) Init(args ...any) error {
	f.args = args
	*f.log = append(*f.log, "init:"+f.name)
	return f.initErr
}
func (f *fakeService) Start() error {
	*f.log = append(*f.log, "start:"+f.name)
	return nil
}
func (f *fakeService) Stop() error {
	*f.log = append(*f.log, "stop:"+f.name)
	return f.stopErr
}

func TestHubOrdersByDependency(t *testing.T) {
	var log []string
	h := NewHub(nil)
	_ = h.Register(&fakeService{name: "clock", deps: []string{"audio"}, log: &log})
	_ = h.Register(&fakeService{name: "audio", log: &log})

	if err := h.InitAll(true); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	if err := h.StartAll(); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := h.StopAll(); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := []string{"init:audio", "init:clock", "start:audio", "start:clock", "stop:clock", "stop:audio"}
	if len(log) != len(want) {
		t.Fatalf("Expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, log)
		}
	}
}

func TestHubInitPassesArgs(t *testing.T) {
	var log []string
	svc := &fakeService{name: "audio", log: &log}
	h := NewHub(nil)
	_ = h.Register(svc)

	if err := h.InitAll(true, "x"); err != nil {
		t.Fatal(err)
	}
	if len(svc.args) != 2 || svc.args[0] != true {
		t.Errorf("Expected args forwarded, got %v", svc.args)
	}
	if got := MustGet[*fakeService](h, "audio"); got != svc {
		t.Error("MustGet returned wrong instance")
	}
}

func TestHubRejectsDuplicateAndMissingDeps(t *testing.T) {
	var log []string
	h := NewHub(nil)
	if err := h.Register(&fakeService{name: "a", log: &log}); err != nil {
		t.Fatal(err)
	}
	if err := h.Register(&fakeService{name: "a", log: &log}); err == nil {
		t.Error("duplicate register should fail")
	}
	_ = h.Register(&fakeService{name: "b", deps: []string{"missing"}, log: &log})
	if err := h.InitAll(); err == nil {
		t.Error("missing dependency should fail InitAll")
	}
}

func TestHubDetectsCycle(t *testing.T) {
	var log []string
	h := NewHub(nil)
	_ = h.Register(&fakeService{name: "a", deps: []string{"b"}, log: &log})
	_ = h.Register(&fakeService{name: "b", deps: []string{"a"}, log: &log})
	if err := h.InitAll(); err == nil {
		t.Error("cycle should fail InitAll")
	}
}

func TestHubInitRollback(t *testing.T) {
	var log []string
	h := NewHub(nil)
	_ = h.Register(&fakeService{name: "a", log: &log})
	_ = h.Register(&fakeService{name: "b", deps: []string{"a"}, log: &log, initErr: errors.New("boom")})

	if err := h.InitAll(); err == nil {
		t.Fatal("expected init failure")
	}
	if log[len(log)-1] != "stop:a" {
		t.Errorf("Expected rollback stop of a, got %v", log)
	}
}

func TestHubStopAllCombinesErrors(t *testing.T) {
	var log []string
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	h := NewHub(nil)
	_ = h.Register(&fakeService{name: "a", log: &log, stopErr: errA})
	_ = h.Register(&fakeService{name: "b", log: &log, stopErr: errB})
	_ = h.InitAll()
	_ = h.StartAll()

	err := h.StopAll()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Expected both stop errors, got %v", err)
	}
}
