// SPDX-License-Identifier: Apache-2.0
package runtime

import "testing"

func TestLookup_KnownIntrinsic(t *testing.T) {
	sig, ok := Lookup("rt::str_concat")
	if !ok {
		t.Fatal("expected rt::str_concat to be known")
	}
	if len(sig.Owned) != 2 || !sig.Owned[0] || !sig.Owned[1] {
		t.Errorf("expected rt::str_concat to own both arguments, got %v", sig.Owned)
	}
}

func TestIsKnown(t *testing.T) {
	if !IsKnown("rt::print") {
		t.Error("expected rt::print to be known")
	}
	if IsKnown("rt::does_not_exist") {
		t.Error("expected rt::does_not_exist to be unknown")
	}
}

func TestOwnedAt_KnownIntrinsicBorrowsSomeArgs(t *testing.T) {
	if OwnedAt("rt::array_get", 0) {
		t.Error("expected rt::array_get to borrow its array argument")
	}
	if OwnedAt("rt::array_get", 1) {
		t.Error("expected rt::array_get to borrow its index argument")
	}
}

func TestOwnedAt_UnknownNameDefaultsOwned(t *testing.T) {
	if !OwnedAt("rt::mystery", 0) {
		t.Error("expected an unregistered intrinsic to default to owned")
	}
}

func TestOwnedAt_PositionBeyondSignatureDefaultsOwned(t *testing.T) {
	if !OwnedAt("rt::print", 5) {
		t.Error("expected an out-of-range position to default to owned")
	}
}
