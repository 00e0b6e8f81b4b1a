package locale

import "testing"

func TestTranslate(t *testing.T) {
	if got := Translate("en-MY", "MISSING_TASK_NAME"); got != "Missing task name" {
		t.Fatalf("got %q", got)
	}
	// Unknown locale falls back to the default catalog.
	if got := Translate("xx-XX", "UNABLE_GET_TASK"); got != "Unable to get task, please try again" {
		t.Fatalf("got %q", got)
	}
	// Unknown codes collapse to the internal-error message.
	if got := Translate("en-MY", "TOTALLY_UNKNOWN"); got != "Internal server error." {
		t.Fatalf("got %q", got)
	}
}

func TestKnown(t *testing.T) {
	if !Known("UNABLE_CREATE_TASK") {
		t.Fatal("expected known code")
	}
	if Known("NOPE") {
		t.Fatal("expected unknown code")
	}
}
