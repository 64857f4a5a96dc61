// Manifest verification tests.
//
// Verify exists for one moment: after a pack has been copied between
// hosts or onto a device, before anyone trusts it. A clean build must
// verify against its own manifest; any altered or missing object must be
// called out by name.
package ntx

import (
	"errors"
	"strings"
	"testing"
)

func testPack(t *testing.T) *Pack {
	t.Helper()
	pack, err := Builder{}.Build([]NoteSource{
		{Title: "alpha", Text: "First note body."},
		{Title: "beta", Text: "Second note body."},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return pack
}

func TestVerifyFreshBuild(t *testing.T) {
	pack := testPack(t)
	if err := Verify(pack.Storage(), pack.Manifest); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestVerifyDetectsCorruption(t *testing.T) {
	pack := testPack(t)

	// Flip one payload byte in one part object.
	pack.Objects["NTX0001"][len(pack.Objects["NTX0001"])-1] ^= 0xFF

	err := Verify(pack.Storage(), pack.Manifest)
	if !errors.Is(err, ErrDigest) {
		t.Fatalf("err = %v, want ErrDigest", err)
	}
	if !strings.Contains(err.Error(), "NTX0001") {
		t.Errorf("error %q does not name the damaged object", err)
	}
}

func TestVerifyDetectsMissingObject(t *testing.T) {
	pack := testPack(t)
	delete(pack.Objects, "NTX0002")

	err := Verify(pack.Storage(), pack.Manifest)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if !strings.Contains(err.Error(), "NTX0002") {
		t.Errorf("error %q does not name the missing object", err)
	}
}

// One damaged object must not mask another: all problems come back in a
// single error.
func TestVerifyReportsEveryProblem(t *testing.T) {
	pack := testPack(t)
	pack.Objects["NTX0001"][0] ^= 0xFF
	delete(pack.Objects, "NTX0002")

	err := Verify(pack.Storage(), pack.Manifest)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrDigest) || !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want both ErrDigest and ErrUnavailable", err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	pack := testPack(t)

	data, err := pack.Manifest.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeManifest(data)
	if err != nil {
		t.Fatalf("DecodeManifest: %v", err)
	}

	// The decoded manifest must still verify the pack it describes.
	if err := Verify(pack.Storage(), decoded); err != nil {
		t.Errorf("Verify with decoded manifest: %v", err)
	}
}
