package failure

import (
	"errors"
	"strings"
	"testing"
)

func TestAsStageError_Classified(t *testing.T) {
	wrapped := New(ReasonFetchError, errors.New("timeout"))
	reason, err := AsStageError(wrapped)
	if reason != ReasonFetchError {
		t.Errorf("reason = %q, want %q", reason, ReasonFetchError)
	}
	if err.Error() != "timeout" {
		t.Errorf("err = %q, want %q", err.Error(), "timeout")
	}
}

func TestAsStageError_Unclassified(t *testing.T) {
	reason, err := AsStageError(errors.New("boom"))
	if reason != ReasonUnexpectedError {
		t.Errorf("reason = %q, want %q", reason, ReasonUnexpectedError)
	}
	if err == nil || err.Error() != "boom" {
		t.Errorf("unexpected err: %v", err)
	}
}

func TestAsStageError_Nil(t *testing.T) {
	reason, err := AsStageError(nil)
	if reason != ReasonNone || err != nil {
		t.Errorf("expected zero outcome, got reason=%q err=%v", reason, err)
	}
}

func TestTruncate(t *testing.T) {
	short := "hello"
	if got := Truncate(short); got != short {
		t.Errorf("Truncate(short) = %q, want unchanged", got)
	}

	long := strings.Repeat("x", maxTruncatedLen+500)
	got := Truncate(long)
	if len(got) != maxTruncatedLen {
		t.Errorf("Truncate(long) len = %d, want %d", len(got), maxTruncatedLen)
	}
}

func TestReason_IsSkip(t *testing.T) {
	cases := map[Reason]bool{
		ReasonPrecheckFailed:    true,
		ReasonScannedOrImagePDF: true,
		ReasonFetchError:        false,
		ReasonOCRFailed:         false,
		ReasonNone:              false,
	}
	for reason, want := range cases {
		if got := reason.IsSkip(); got != want {
			t.Errorf("Reason(%q).IsSkip() = %v, want %v", reason, got, want)
		}
	}
}
