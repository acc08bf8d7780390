package controller_test

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"taskdash/internal/controller"
	"taskdash/internal/service"
	"taskdash/internal/testutil"
)

type notes struct{ msgs []string }

func (n *notes) Notify(m string) { n.msgs = append(n.msgs, m) }

func newController(svc service.Service) (*controller.Controller, *notes) {
	n := &notes{}
	return controller.New(svc, n, nil), n
}

func always(service.Task) bool { return true }
func never(service.Task) bool  { return false }

func TestStatusCounters_EmptyMirror(t *testing.T) {
	c, _ := newController(testutil.NewFakeService())

	want := service.Counters{
		service.StatusPending:    0,
		service.StatusInProgress: 0,
		service.StatusBlocked:    0,
		service.StatusDone:       0,
	}
	if got := c.StatusCounters(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestScenario_RefreshEditSave(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "Buy milk", service.StatusPending)
	c, _ := newController(svc)
	ctx := context.Background()

	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	want := []service.Task{{ID: "1", Title: "Buy milk", Status: service.StatusPending}}
	if got := c.Tasks(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := c.StatusCounters(); got[service.StatusPending] != 1 || got[service.StatusDone] != 0 {
		t.Fatalf("unexpected counters %v", got)
	}

	if err := c.RequestEdit("1"); err != nil {
		t.Fatalf("RequestEdit failed: %v", err)
	}
	sess, ok := c.Session()
	if !ok || sess.Mode != controller.ModeEdit || sess.TaskID != "1" || sess.Form.Title != "Buy milk" {
		t.Fatalf("unexpected session %+v (open=%v)", sess, ok)
	}

	if err := c.Save(ctx, service.Payload{Title: "Buy milk", Status: service.StatusDone}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, ok := c.Session(); ok {
		t.Error("expected session closed after successful save")
	}
	if got := c.Tasks(); got[0].Status != service.StatusDone {
		t.Errorf("expected refreshed status done, got %s", got[0].Status)
	}
	counters := c.StatusCounters()
	if counters[service.StatusPending] != 0 || counters[service.StatusDone] != 1 {
		t.Errorf("counters did not shift: %v", counters)
	}
}

func TestSave_ServerErrorKeepsSessionAndMirror(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "Buy milk", service.StatusPending)
	c, n := newController(svc)
	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	before := c.Tasks()

	svc.UpdateTaskErr = &service.ServerError{Status: http.StatusInternalServerError}
	if err := c.RequestEdit("1"); err != nil {
		t.Fatal(err)
	}
	entered := service.Payload{Title: "Buy oat milk", Status: service.StatusBlocked}
	err := c.Save(ctx, entered)

	var serr *service.ServerError
	if !errors.As(err, &serr) || serr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 ServerError, got %v", err)
	}
	sess, ok := c.Session()
	if !ok {
		t.Fatal("session must remain open after failed save")
	}
	if sess.Form != entered {
		t.Errorf("expected entered values %+v, got %+v", entered, sess.Form)
	}
	if !reflect.DeepEqual(c.Tasks(), before) {
		t.Error("mirror changed after failed save")
	}
	if len(n.msgs) != 1 || n.msgs[0] != "Could not save task" {
		t.Errorf("expected generic fallback notification, got %v", n.msgs)
	}
}

func TestSave_ServerMessageIsSurfaced(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr = &service.ServerError{Status: http.StatusServiceUnavailable, Message: "Could not connect to database"}
	c, n := newController(svc)

	if err := c.RequestCreate(); err != nil {
		t.Fatal(err)
	}
	_ = c.Save(context.Background(), service.Payload{Title: "x", Status: service.StatusPending})

	if len(n.msgs) != 1 || n.msgs[0] != "Could not connect to database" {
		t.Errorf("expected server message, got %v", n.msgs)
	}
}

func TestSave_WhitespaceTitleNeverCallsService(t *testing.T) {
	svc := testutil.NewFakeService()
	c, n := newController(svc)

	if err := c.RequestCreate(); err != nil {
		t.Fatal(err)
	}
	err := c.Save(context.Background(), service.Payload{Title: "   ", Status: service.StatusPending})

	if !service.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if svc.Calls != 0 {
		t.Errorf("expected no service calls, got %d", svc.Calls)
	}
	if _, ok := c.Session(); !ok {
		t.Error("session must stay open after validation failure")
	}
	if len(c.Tasks()) != 0 {
		t.Error("mirror must be unchanged")
	}
	if len(n.msgs) != 1 {
		t.Errorf("expected one notification, got %v", n.msgs)
	}
}

func TestSave_CreationStatusPolicy(t *testing.T) {
	svc := testutil.NewFakeService()
	c, _ := newController(svc)

	if err := c.RequestCreate(); err != nil {
		t.Fatal(err)
	}
	for _, st := range []service.Status{service.StatusBlocked, service.StatusDone} {
		err := c.Save(context.Background(), service.Payload{Title: "x", Status: st})
		if !service.IsValidation(err) {
			t.Errorf("status %s: expected ValidationError on create, got %v", st, err)
		}
	}
	if svc.Calls != 0 {
		t.Errorf("expected no service calls, got %d", svc.Calls)
	}

	if err := c.Save(context.Background(), service.Payload{Title: "x", Status: service.StatusInProgress}); err != nil {
		t.Fatalf("in_progress create failed: %v", err)
	}
	if got := svc.Snapshot(); len(got) != 1 || got[0].Status != service.StatusInProgress {
		t.Errorf("unexpected server state %v", got)
	}
}

func TestSave_CreateTrimsAndDefaultsStatus(t *testing.T) {
	svc := testutil.NewFakeService()
	c, _ := newController(svc)

	if err := c.RequestCreate(); err != nil {
		t.Fatal(err)
	}
	sess, _ := c.Session()
	if sess.Form != (service.Payload{Title: "", Status: service.StatusPending}) {
		t.Errorf("unexpected blank form %+v", sess.Form)
	}
	if err := c.Save(context.Background(), service.Payload{Title: "  Walk dog  "}); err != nil {
		t.Fatal(err)
	}
	got := c.Tasks()
	if len(got) != 1 || got[0].Title != "Walk dog" || got[0].Status != service.StatusPending {
		t.Errorf("unexpected mirror %v", got)
	}
}

func TestSave_NoSession(t *testing.T) {
	c, _ := newController(testutil.NewFakeService())
	if err := c.Save(context.Background(), service.Payload{Title: "x"}); !errors.Is(err, controller.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestSave_StaleTaskIsNotFound(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "Buy milk", service.StatusPending)
	c, _ := newController(svc)
	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.RequestEdit("1"); err != nil {
		t.Fatal(err)
	}

	// Deleted elsewhere after our refresh.
	if err := svc.DeleteTask(ctx, "1"); err != nil {
		t.Fatal(err)
	}

	err := c.Save(ctx, service.Payload{Title: "Buy milk", Status: service.StatusDone})
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(c.Tasks()) != 1 {
		t.Error("mirror must not change on failed save")
	}
}

func TestRequestCreate_OneSessionAtATime(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "a", service.StatusPending)
	c, _ := newController(svc)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := c.RequestCreate(); err != nil {
		t.Fatal(err)
	}
	if err := c.RequestCreate(); !errors.Is(err, controller.ErrSessionOpen) {
		t.Errorf("expected ErrSessionOpen, got %v", err)
	}
	if err := c.RequestEdit("1"); !errors.Is(err, controller.ErrSessionOpen) {
		t.Errorf("expected ErrSessionOpen, got %v", err)
	}

	c.CancelEdit()
	if _, ok := c.Session(); ok {
		t.Error("expected session closed after cancel")
	}
	if svc.Calls != 1 {
		t.Errorf("cancel must not call the service, calls=%d", svc.Calls)
	}
}

func TestRequestEdit_UnknownTask(t *testing.T) {
	c, _ := newController(testutil.NewFakeService())
	if err := c.RequestEdit("nope"); !errors.Is(err, controller.ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
	if _, ok := c.Session(); ok {
		t.Error("no session should be opened")
	}
}

func TestRequestDelete_Confirmation(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "a", service.StatusPending)
	svc.AddTask("2", "b", service.StatusDone)
	c, _ := newController(svc)
	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	deleted, err := c.RequestDelete(ctx, "1", never)
	if err != nil || deleted {
		t.Fatalf("declined delete: deleted=%v err=%v", deleted, err)
	}
	if len(svc.Snapshot()) != 2 {
		t.Fatal("declined delete must not reach the service")
	}

	deleted, err = c.RequestDelete(ctx, "1", always)
	if err != nil || !deleted {
		t.Fatalf("confirmed delete: deleted=%v err=%v", deleted, err)
	}
	want := []service.Task{{ID: "2", Title: "b", Status: service.StatusDone}}
	if got := c.Tasks(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRequestDelete_FailureLeavesMirror(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "a", service.StatusPending)
	c, n := newController(svc)
	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	before := c.Tasks()

	svc.DeleteTaskErr = &service.NetworkError{Op: "delete task", Err: errors.New("connection reset")}
	deleted, err := c.RequestDelete(ctx, "1", always)
	if err == nil || deleted {
		t.Fatalf("expected failure, got deleted=%v err=%v", deleted, err)
	}
	if !reflect.DeepEqual(c.Tasks(), before) {
		t.Error("mirror changed after failed delete")
	}
	if len(n.msgs) != 1 || n.msgs[0] != "Could not delete task" {
		t.Errorf("unexpected notifications %v", n.msgs)
	}
}

func TestRequestDelete_UnknownTask(t *testing.T) {
	c, _ := newController(testutil.NewFakeService())
	if _, err := c.RequestDelete(context.Background(), "x", always); !errors.Is(err, controller.ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
}

func TestRefresh_FailureKeepsMirror(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "a", service.StatusPending)
	c, n := newController(svc)
	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	svc.AddTask("2", "b", service.StatusPending)
	svc.ListTasksErr = &service.ServerError{Status: http.StatusBadGateway}
	if err := c.Refresh(ctx); err == nil {
		t.Fatal("expected refresh error")
	}
	if len(c.Tasks()) != 1 {
		t.Error("mirror must be unchanged after failed refresh")
	}
	if len(n.msgs) != 1 || n.msgs[0] != "Could not load tasks" {
		t.Errorf("unexpected notifications %v", n.msgs)
	}
}

func TestRefresh_ExpiredSessionIsNotNotified(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = &service.ServerError{Status: http.StatusUnauthorized, Message: "Unauthorized", Authenticated: true}
	c, n := newController(svc)

	err := c.Refresh(context.Background())
	if !errors.Is(err, service.ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if len(n.msgs) != 0 {
		t.Errorf("expected no notifications, got %v", n.msgs)
	}
}

func TestRefresh_ReplacesWholesale(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "a", service.StatusPending)
	c, _ := newController(svc)
	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	// Removed behind our back: the stale entry must disappear on refresh.
	if err := svc.DeleteTask(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	svc.AddTask("9", "z", service.StatusBlocked)
	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	want := []service.Task{{ID: "9", Title: "z", Status: service.StatusBlocked}}
	if got := c.Tasks(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBusy_RejectsDuplicateGestures(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Gate = make(chan struct{})
	c, _ := newController(svc)
	if err := c.RequestCreate(); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- c.Save(context.Background(), service.Payload{Title: "once", Status: service.StatusPending})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !c.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("save never went in flight")
		}
		time.Sleep(time.Millisecond)
	}

	if err := c.Save(context.Background(), service.Payload{Title: "twice"}); !errors.Is(err, controller.ErrBusy) {
		t.Errorf("expected ErrBusy for duplicate save, got %v", err)
	}
	if err := c.Refresh(context.Background()); !errors.Is(err, controller.ErrBusy) {
		t.Errorf("expected ErrBusy for refresh, got %v", err)
	}

	close(svc.Gate)
	if err := <-done; err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if got := svc.Snapshot(); len(got) != 1 || got[0].Title != "once" {
		t.Errorf("expected exactly one created task, got %v", got)
	}
	if c.Busy() {
		t.Error("controller still busy")
	}
}

func TestReset(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "a", service.StatusPending)
	c, _ := newController(svc)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.RequestEdit("1"); err != nil {
		t.Fatal(err)
	}

	c.Reset()
	if len(c.Tasks()) != 0 {
		t.Error("expected empty mirror")
	}
	if _, ok := c.Session(); ok {
		t.Error("expected no session")
	}
}
