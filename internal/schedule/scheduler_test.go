package schedule

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func fixedNow(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestLoadState_Missing(t *testing.T) {
	st, err := LoadState(filepath.Join(t.TempDir(), "none.json"))
	if err != nil || st.LastRunDate != "" {
		t.Fatalf("expected zero state, got %+v err=%v", st, err)
	}
}

func TestSaveLoadState(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "state.json")
	if err := SaveState(p, State{LastRunDate: "2026-01-05"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	st, err := LoadState(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !st.RanOn(time.Date(2026, 1, 5, 23, 0, 0, 0, time.Local)) {
		t.Fatalf("state %+v should match 2026-01-05", st)
	}
}

func TestRunIfDue_RecordsOnSuccessOnly(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.json")
	day := time.Date(2026, 1, 5, 6, 5, 0, 0, time.Local)
	var calls int32
	fail := true
	s := &Scheduler{
		StateFile: state,
		Now:       fixedNow(day),
		Job: func(ctx context.Context, date time.Time) error {
			atomic.AddInt32(&calls, 1)
			if fail {
				return errors.New("feed down")
			}
			return nil
		},
	}

	ran, err := s.RunIfDue(context.Background())
	if !ran || err == nil {
		t.Fatalf("expected failed run, ran=%v err=%v", ran, err)
	}
	if due, _ := s.Due(day); !due {
		t.Fatalf("failed run must not advance the marker")
	}

	fail = false
	if ran, err := s.RunIfDue(context.Background()); !ran || err != nil {
		t.Fatalf("expected successful run, ran=%v err=%v", ran, err)
	}
	if ran, err := s.RunIfDue(context.Background()); ran || err != nil {
		t.Fatalf("second run on same day should be skipped, ran=%v err=%v", ran, err)
	}
	if calls != 2 {
		t.Fatalf("job calls=%d, want 2", calls)
	}

	s.Now = fixedNow(day.AddDate(0, 0, 1))
	if ran, _ := s.RunIfDue(context.Background()); !ran {
		t.Fatalf("next day should be due")
	}
}

func TestParseSpec(t *testing.T) {
	if err := ParseSpec(DefaultSpec); err != nil {
		t.Fatalf("default spec rejected: %v", err)
	}
	if err := ParseSpec("@daily"); err != nil {
		t.Fatalf("descriptor rejected: %v", err)
	}
	if err := ParseSpec("61 * * * *"); err == nil {
		t.Fatalf("expected invalid minute to fail")
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := &Scheduler{Spec: "not a spec", Job: func(context.Context, time.Time) error { return nil }}
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestStart_RunOnStartThenStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan time.Time, 1)
	s := &Scheduler{
		Spec:       "0 0 1 1 *",
		StateFile:  filepath.Join(t.TempDir(), "state.json"),
		RunOnStart: true,
		Job: func(ctx context.Context, date time.Time) error {
			ran <- date
			return nil
		},
	}
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("run on start did not fire")
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Start did not return after cancel")
	}
}
