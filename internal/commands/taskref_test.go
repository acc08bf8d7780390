package commands

import (
	"context"
	"testing"

	"taskdash/internal/controller"
	"taskdash/internal/service"
	"taskdash/internal/testutil"
)

func TestParseTaskRef_NumericOnly(t *testing.T) {
	ref, err := ParseTaskRef([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Num != 5 {
		t.Errorf("expected Num 5, got %d", ref.Num)
	}
	if ref.ID != "" {
		t.Errorf("expected empty ID, got %q", ref.ID)
	}
}

func TestParseTaskRef_ID(t *testing.T) {
	ref, err := ParseTaskRef([]string{"t12"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != "t12" {
		t.Errorf("expected ID t12, got %q", ref.ID)
	}
	if ref.Num != 0 {
		t.Errorf("expected Num 0, got %d", ref.Num)
	}
}

func TestParseTaskRef_ForcedID(t *testing.T) {
	ref, err := ParseTaskRef([]string{"id:42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != "42" {
		t.Errorf("expected ID 42, got %q", ref.ID)
	}
}

func TestParseTaskRef_EmptyForcedID_Error(t *testing.T) {
	_, err := ParseTaskRef([]string{"id:"})
	if err == nil {
		t.Fatal("expected error for empty id")
	}
	expectedMsg := "invalid task reference: id:"
	if err.Error() != expectedMsg {
		t.Errorf("expected %q, got %q", expectedMsg, err.Error())
	}
}

func TestParseTaskRef_NoArgs_Error(t *testing.T) {
	_, err := ParseTaskRef(nil)
	if err != ErrTaskRefRequired {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}
}

func TestParseTaskRef_Blank_Error(t *testing.T) {
	_, err := ParseTaskRef([]string{"  "})
	if err != ErrTaskRefRequired {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}
}

func TestParseTaskRef_TooMany_Error(t *testing.T) {
	_, err := ParseTaskRef([]string{"1", "2"})
	if err == nil {
		t.Fatal("expected error for extra args")
	}
	expectedMsg := "too many arguments: 2"
	if err.Error() != expectedMsg {
		t.Errorf("expected %q, got %q", expectedMsg, err.Error())
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", false},
		{"0", true},
		{"123", true},
		{"12a", false},
		{"-1", false},
		{" 1", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isAllDigits(tt.input); got != tt.expected {
				t.Errorf("isAllDigits(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTaskRef_Resolve(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk", service.StatusPending)
	svc.AddTask("7", "Numeric id", service.StatusDone)

	ctl := controller.New(svc, nil, nil)
	if err := ctl.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	tests := []struct {
		name    string
		ref     TaskRef
		wantID  string
		wantErr string
	}{
		{"position", TaskRef{Num: 2}, "7", ""},
		{"id", TaskRef{ID: "t1"}, "t1", ""},
		{"numeric id", TaskRef{ID: "7"}, "7", ""},
		{"zero", TaskRef{Num: 0}, "", "task number out of range: 0"},
		{"past end", TaskRef{Num: 3}, "", "task number out of range: 3"},
		{"unknown id", TaskRef{ID: "nope"}, "", "task not found: nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := tt.ref.Resolve(ctl)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Errorf("expected error %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if task.ID != tt.wantID {
				t.Errorf("expected ID %q, got %q", tt.wantID, task.ID)
			}
		})
	}
}
