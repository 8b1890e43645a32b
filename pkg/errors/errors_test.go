package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := Wrap(CodeDependency, cause, "save assets")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code: %s", err.Code())
	}
	if err.Error() != "DEPENDENCY_ERROR: save assets" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := New(CodeStateConflict, "asset is not in use")
	outer := fmt.Errorf("dismantle: %w", inner)

	if !HasCode(outer, CodeStateConflict) {
		t.Fatal("expected code to be found through fmt wrapping")
	}
	if HasCode(outer, CodeNotFound) {
		t.Fatal("unexpected code match")
	}
	if HasCode(stdErrors.New("plain"), CodeStateConflict) {
		t.Fatal("plain errors carry no code")
	}
}

func TestReferenceConflictCarriesBlockingCount(t *testing.T) {
	err := ReferenceConflict("customer still has installed assets", 3)

	if err.Code() != CodeReferenceConflict {
		t.Fatalf("unexpected code: %s", err.Code())
	}
	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatalf("unexpected details type: %T", err.Details())
	}
	if details["blocking_references"] != 3 {
		t.Fatalf("unexpected blocking count: %v", details["blocking_references"])
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	if meta != metadataByCode[CodeInternal] {
		t.Fatalf("unknown codes should fall back to internal metadata: %+v", meta)
	}
	if !MetadataFor(CodeDependency).Retryable {
		t.Fatal("dependency failures should be retryable")
	}
}
