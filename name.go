// Object naming convention.
//
// Every object name is derivable from numbers alone, so any tool that
// knows a note's part range can address its objects without consulting
// document content.
package ntx

import "fmt"

// IndexName is the fixed name of the pack's index object.
const IndexName = "NTXIDX"

// PartName maps a numeric part id to its storage object name: the NTX
// prefix plus the id as zero-padded decimal, at least four digits wide.
func PartName(id uint16) string {
	return fmt.Sprintf("NTX%04d", id)
}
