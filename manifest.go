// Build manifest.
//
// Each build emits a JSON manifest alongside the binary objects: what
// notes the pack holds, which objects exist, and a content digest per
// object. The manifest is host-side metadata the device reader never
// sees, but it is what lets a pack be verified after transfer and
// lets tooling describe a pack without decoding every container.
package ntx

import (
	"errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
)

// Manifest records what a build produced.
type Manifest struct {
	Index     string            `json:"index"`   // index object name
	Algorithm int               `json:"alg"`     // digest algorithm (AlgXXHash3, ...)
	Notes     []ManifestNote    `json:"notes"`   // note table, in pack order
	Objects   map[string]string `json:"objects"` // object name -> content digest
}

// ManifestNote mirrors one index record.
type ManifestNote struct {
	NoteID      uint16 `json:"note_id"`
	Title       string `json:"title"`
	FirstPartID uint16 `json:"first_part_id"`
	PartCount   uint16 `json:"part_count"`
	TotalChunks uint16 `json:"total_chunks"`
}

// Encode serialises the manifest as indented JSON.
func (m *Manifest) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// DecodeManifest parses a manifest written by Encode.
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return &m, nil
}

// Verify recomputes every object digest listed in the manifest against
// the given storage. Missing objects surface as ErrUnavailable, altered
// ones as ErrDigest; all problems are reported in one error, in object
// name order.
func Verify(st Storage, m *Manifest) error {
	names := make([]string, 0, len(m.Objects))
	for name := range m.Objects {
		names = append(names, name)
	}
	sort.Strings(names)

	var problems []error
	for _, name := range names {
		data, err := readObject(st, name)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		if got := digest(data, m.Algorithm); got != m.Objects[name] {
			problems = append(problems, fmt.Errorf("%w: %s has %s, manifest says %s", ErrDigest, name, got, m.Objects[name]))
		}
	}
	return errors.Join(problems...)
}
