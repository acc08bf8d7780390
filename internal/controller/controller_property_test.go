package controller_test

import (
	"context"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"taskdash/internal/controller"
	"taskdash/internal/service"
	"taskdash/internal/testutil"
)

// TestProperty_MirrorMatchesServerAfterMutations verifies that after every
// successful create/update/delete the mirror equals the server collection.
func TestProperty_MirrorMatchesServerAfterMutations(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		svc := testutil.NewFakeService()
		c := controller.New(svc, nil, nil)
		ctx := context.Background()

		n := rapid.IntRange(1, 30).Draw(rt, "num_ops")
		for i := 0; i < n; i++ {
			tasks := c.Tasks()
			op := rapid.SampledFrom([]string{"create", "update", "delete", "refresh"}).Draw(rt, "op")
			if op != "create" && op != "refresh" && len(tasks) == 0 {
				op = "create"
			}

			var err error
			switch op {
			case "create":
				title := rapid.StringMatching(`[a-z ]{0,12}`).Draw(rt, "title")
				status := rapid.SampledFrom(service.CreationStatuses).Draw(rt, "create_status")
				if err = c.RequestCreate(); err != nil {
					rt.Fatalf("RequestCreate: %v", err)
				}
				err = c.Save(ctx, service.Payload{Title: title, Status: status})
				if service.IsValidation(err) {
					c.CancelEdit()
					err = nil
				}
			case "update":
				target := rapid.SampledFrom(tasks).Draw(rt, "target")
				title := rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "new_title")
				status := rapid.SampledFrom(service.EditStatuses).Draw(rt, "edit_status")
				if err = c.RequestEdit(target.ID); err != nil {
					rt.Fatalf("RequestEdit: %v", err)
				}
				err = c.Save(ctx, service.Payload{Title: title, Status: status})
			case "delete":
				target := rapid.SampledFrom(tasks).Draw(rt, "target")
				_, err = c.RequestDelete(ctx, target.ID, always)
			case "refresh":
				err = c.Refresh(ctx)
			}
			if err != nil {
				rt.Fatalf("%s failed: %v", op, err)
			}

			if got, want := c.Tasks(), svc.Snapshot(); !reflect.DeepEqual(got, want) {
				rt.Fatalf("after %s: mirror %v != server %v", op, got, want)
			}
			if _, open := c.Session(); open {
				rt.Fatalf("after %s: editor session left open", op)
			}
		}
	})
}

// statusesFromServer includes values outside the enum a server may send.
var statusesFromServer = append([]service.Status{"", "archived"}, service.AllStatuses...)

// TestProperty_CountersCoverMirror verifies counters always carry exactly the
// four statuses and sum to the mirror length.
func TestProperty_CountersCoverMirror(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		svc := testutil.NewFakeService()
		n := rapid.IntRange(0, 40).Draw(rt, "num_tasks")
		for i := 0; i < n; i++ {
			st := rapid.SampledFrom(statusesFromServer).Draw(rt, "status")
			svc.AddTask(rapid.StringMatching(`id[0-9]{1,6}`).Draw(rt, "id"), "t", st)
		}
		c := controller.New(svc, nil, nil)
		if err := c.Refresh(context.Background()); err != nil {
			rt.Fatalf("Refresh: %v", err)
		}

		counters := c.StatusCounters()
		if len(counters) != len(service.AllStatuses) {
			rt.Fatalf("expected %d keys, got %v", len(service.AllStatuses), counters)
		}
		sum := 0
		for _, st := range service.AllStatuses {
			v, ok := counters[st]
			if !ok {
				rt.Fatalf("missing key %s", st)
			}
			sum += v
		}
		if sum != len(c.Tasks()) {
			rt.Fatalf("counters sum %d != mirror length %d", sum, len(c.Tasks()))
		}
	})
}

// TestProperty_WhitespaceTitlesNeverReachService verifies blank titles are
// rejected locally in both modes.
func TestProperty_WhitespaceTitlesNeverReachService(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		svc := testutil.NewFakeService()
		svc.AddTask("1", "seed", service.StatusPending)
		c := controller.New(svc, nil, nil)
		if err := c.Refresh(context.Background()); err != nil {
			rt.Fatalf("Refresh: %v", err)
		}
		calls := svc.Calls

		blank := rapid.StringMatching(`[ \t\n]{0,8}`).Draw(rt, "blank")
		if rapid.Bool().Draw(rt, "edit") {
			if err := c.RequestEdit("1"); err != nil {
				rt.Fatalf("RequestEdit: %v", err)
			}
		} else if err := c.RequestCreate(); err != nil {
			rt.Fatalf("RequestCreate: %v", err)
		}

		err := c.Save(context.Background(), service.Payload{Title: blank, Status: service.StatusPending})
		if !service.IsValidation(err) {
			rt.Fatalf("expected ValidationError for %q, got %v", blank, err)
		}
		if svc.Calls != calls {
			rt.Fatalf("service called for blank title %q", blank)
		}
	})
}
