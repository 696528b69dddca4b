package capture_test

import (
	"context"
	"errors"
	"testing"

	"democap/internal/capture"
	"democap/internal/testsupport"
)

func TestRecordStopsAfterWork(t *testing.T) {
	session, _, _ := newSession(t, testsupport.RecordingEncoder)
	ran := false
	result, err := capture.Record(context.Background(), session, browserWindow, func(ctx context.Context) error {
		ran = true
		if !session.Recording() {
			t.Error("expected recording while work runs")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !ran {
		t.Fatal("work did not run")
	}
	if result.SizeBytes == 0 || session.Recording() {
		t.Fatalf("expected stopped session with output, got %+v", result)
	}
}

func TestRecordWorkErrorWinsOverStopError(t *testing.T) {
	session, _, _ := newSession(t, testsupport.SilentEncoder)
	workErr := errors.New("element not found")
	_, err := capture.Record(context.Background(), session, browserWindow, func(context.Context) error {
		return workErr
	})
	if !errors.Is(err, workErr) {
		t.Fatalf("expected work error, got %v", err)
	}
	var missing *capture.OutputMissingError
	if errors.As(err, &missing) {
		t.Fatal("stop error must not mask the work error")
	}
	if session.Recording() {
		t.Fatal("expected session stopped")
	}
}

func TestRecordStopsOnPanic(t *testing.T) {
	session, _, _ := newSession(t, testsupport.RecordingEncoder)
	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Fatalf("expected panic to propagate, got %v", r)
			}
		}()
		_, _ = capture.Record(context.Background(), session, browserWindow, func(context.Context) error {
			panic("boom")
		})
	}()
	if session.Recording() {
		t.Fatal("expected session stopped after panic")
	}
}

func TestRecordLaunchFailureSkipsWork(t *testing.T) {
	session, _, _ := newSession(t, testsupport.FailingEncoder)
	ran := false
	_, err := capture.Record(context.Background(), session, browserWindow, func(context.Context) error {
		ran = true
		return nil
	})
	var launchErr *capture.LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("expected LaunchError, got %v", err)
	}
	if ran {
		t.Fatal("work must not run after a launch failure")
	}
}
