package ntx_test

import (
	"fmt"
	"log"

	"github.com/jpl-au/ntx"
)

func Example() {
	// Build a pack from two notes
	pack, err := ntx.Builder{}.Build([]ntx.NoteSource{
		{Title: "Thermodynamics", Text: "Energy is conserved. Entropy never decreases."},
		{Title: "Optics", Text: "Light bends at an interface."},
	})
	if err != nil {
		log.Fatal(err)
	}

	// Read it back the way a device would
	st := pack.Storage()
	index, err := ntx.LoadIndex(st)
	if err != nil {
		log.Fatal(err)
	}

	for _, note := range index.Notes() {
		fmt.Printf("%s (%d chunks)\n", note.Title, note.TotalChunks)
	}

	chunk, _ := ntx.LoadChunk(st, index.Note(0), 0)
	fmt.Println(chunk.Text)
	// Output: Thermodynamics (1 chunks)
	// Optics (1 chunks)
	// Energy is conserved. Entropy never decreases.
}

func ExampleLoadChunk() {
	pack, _ := ntx.Builder{
		Splitter: ntx.Splitter{Target: 25, Hard: 50},
	}.Build([]ntx.NoteSource{
		{Title: "Notes", Text: "First sentence here. Second sentence follows."},
	})

	st := pack.Storage()
	index, _ := ntx.LoadIndex(st)
	note := index.Note(0)

	for i := uint16(0); i < note.TotalChunks; i++ {
		chunk, err := ntx.LoadChunk(st, note, i)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%d: %q (%s)\n", i, chunk.Text, chunk.Kind)
	}
	// Output: 0: "First sentence here." (sentence)
	// 1: " Second sentence follows." (none)
}

func ExampleSplitter_Split() {
	chunks, _ := ntx.Splitter{Target: 40, Hard: 60}.Split(
		"Short first part. Then the remainder of the text.")

	for _, c := range chunks {
		fmt.Printf("%q %s\n", c.Text, c.Kind)
	}
	// Output: "Short first part." sentence
	// " Then the remainder of the text." none
}
