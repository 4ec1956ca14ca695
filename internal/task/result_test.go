package task

import "testing"

func TestSuccess(t *testing.T) {
	res := Success(Task{ID: "42", Action: "file/create"})

	if res.ID != "42" || res.Action != "file/create" {
		t.Errorf("id/action not copied: %+v", res)
	}
	if !res.Success {
		t.Error("expected success")
	}
	if res.Error != nil {
		t.Errorf("expected no error field, got %+v", res.Error)
	}
}

func TestFailure(t *testing.T) {
	res := Failure(Task{ID: "42", Action: "file/edit"}, KindArgument, "bad path")

	if res.ID != "42" || res.Action != "file/edit" {
		t.Errorf("id/action not copied: %+v", res)
	}
	if res.Success {
		t.Error("expected failure")
	}
	if res.Error == nil {
		t.Fatal("expected error field")
	}
	if res.Error.Type != KindArgument || res.Error.Message != "bad path" {
		t.Errorf("unexpected error payload: %+v", res.Error)
	}
}

func TestFailure_ZeroTask(t *testing.T) {
	// Degenerate case: a malformed task still yields a correlatable envelope
	// with id/action simply empty.
	res := Failure(Task{}, KindArgument, "task must be specified")

	if res.ID != "" || res.Action != "" {
		t.Errorf("expected empty id/action, got %+v", res)
	}
	if res.Error == nil || res.Error.Type != KindArgument {
		t.Errorf("unexpected error payload: %+v", res.Error)
	}
}
