package editor

import (
	"context"
	"errors"
	"testing"

	"taskdash/internal/controller"
	"taskdash/internal/service"
	"taskdash/internal/testutil"
)

type recordingSaver struct {
	got []service.Payload
	err error
}

func (s *recordingSaver) Save(ctx context.Context, p service.Payload) error {
	s.got = append(s.got, p)
	return s.err
}

func TestOpen_CreateMode(t *testing.T) {
	m := Open(controller.Session{Mode: controller.ModeCreate, Form: service.Payload{}})

	if m.Title() != "" || m.Status() != service.StatusPending {
		t.Errorf("expected blank default, got %q/%s", m.Title(), m.Status())
	}
	if m.Heading() != "New task" {
		t.Errorf("unexpected heading %q", m.Heading())
	}
	opts := m.StatusOptions()
	if len(opts) != 2 || opts[0] != service.StatusPending || opts[1] != service.StatusInProgress {
		t.Errorf("create mode must offer pending/in_progress only, got %v", opts)
	}
	if err := m.SetStatus(service.StatusDone); !service.IsValidation(err) {
		t.Errorf("expected ValidationError for done on create, got %v", err)
	}
}

func TestOpen_EditMode(t *testing.T) {
	m := Open(controller.Session{
		Mode:   controller.ModeEdit,
		TaskID: "1",
		Form:   service.Payload{Title: "Buy milk", Status: service.StatusInProgress},
	})

	if m.TaskID() != "1" || m.Title() != "Buy milk" || m.Status() != service.StatusInProgress {
		t.Errorf("modal not pre-populated: %+v", m)
	}
	if len(m.StatusOptions()) != 4 {
		t.Errorf("edit mode must offer all statuses, got %v", m.StatusOptions())
	}
	if err := m.SetStatus(service.StatusBlocked); err != nil {
		t.Errorf("blocked should be allowed on edit: %v", err)
	}
}

func TestCycleStatus_Wraps(t *testing.T) {
	m := Open(controller.Session{Mode: controller.ModeCreate})
	m.CycleStatus()
	if m.Status() != service.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", m.Status())
	}
	m.CycleStatus()
	if m.Status() != service.StatusPending {
		t.Fatalf("expected wrap to pending, got %s", m.Status())
	}
}

func TestSubmit_WhitespaceTitleBlocked(t *testing.T) {
	m := Open(controller.Session{Mode: controller.ModeCreate})
	m.SetTitle("   ")
	saver := &recordingSaver{}

	err := m.Submit(context.Background(), saver)
	if !service.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(saver.got) != 0 {
		t.Error("saver must not be called for a blank title")
	}
}

func TestSubmit_TrimsAndKeepsInputOnFailure(t *testing.T) {
	m := Open(controller.Session{Mode: controller.ModeCreate})
	m.SetTitle("  Buy milk  ")
	m.CycleStatus()
	saver := &recordingSaver{err: errors.New("boom")}

	if err := m.Submit(context.Background(), saver); err == nil {
		t.Fatal("expected saver error")
	}
	want := service.Payload{Title: "Buy milk", Status: service.StatusInProgress}
	if len(saver.got) != 1 || saver.got[0] != want {
		t.Errorf("expected %+v, got %v", want, saver.got)
	}
	if m.Title() != "  Buy milk  " || m.Status() != service.StatusInProgress {
		t.Error("modal input must be left intact after a failed submit")
	}
}

func TestSubmit_ThroughController(t *testing.T) {
	svc := testutil.NewFakeService()
	c := controller.New(svc, nil, nil)
	if err := c.RequestCreate(); err != nil {
		t.Fatal(err)
	}
	sess, _ := c.Session()
	m := Open(sess)
	m.SetTitle("Walk dog")

	if err := m.Submit(context.Background(), c); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, open := c.Session(); open {
		t.Error("controller should close the session on success")
	}
	if tasks := c.Tasks(); len(tasks) != 1 || tasks[0].Title != "Walk dog" {
		t.Errorf("unexpected mirror %v", tasks)
	}
}
