package hsm_test

import (
	"sync"
	"testing"

	. "github.com/enetx/hsm"
)

func TestSyncInstance_Concurrent(t *testing.T) {
	m, err := Define("counter").
		State("idle", Initial()).
		Internal("idle", "inc", Action(func(ctx *Context) error {
			n := ctx.Data.Get("n").UnwrapOr(0).(int)
			ctx.Data.Set("n", n+1)
			return nil
		})).
		Build()
	assertNoError(t, err)

	inst, err := m.NewInstance(nil)
	assertNoError(t, err)

	si := inst.Sync()

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_ = si.Trigger("inc")
			_ = si.Current()
			_ = si.Events()
		}()
	}

	wg.Wait()

	assertEqual(t, si.Context().Data.Get("n").Unwrap().(int), 50)
	assertTrue(t, si.Is("idle"))
	assertTrue(t, si.Unwrap() == inst)
}

func TestSyncInstance_SharedMachine(t *testing.T) {
	m := coffee(t)

	var wg sync.WaitGroup

	errs := make(chan error, 20)

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			inst, err := m.NewInstance(nil)
			if err != nil {
				errs <- err
				return
			}

			for _, event := range []Event{"walk", "stop", "drink", "walk", "relax"} {
				if err := inst.Trigger(event); err != nil {
					errs <- err
					return
				}
			}

			if inst.Current() != "standing" {
				errs <- &ErrUnknownState{State: inst.Current()}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		assertNoError(t, err)
	}
}
