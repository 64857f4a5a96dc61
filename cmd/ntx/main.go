// Command ntx builds and inspects NTX note packs.
//
// Logging goes to stderr via slog; command output (listings, chunk text)
// goes to stdout so it can be piped.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpl-au/ntx"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	root := &cobra.Command{
		Use:           "ntx",
		Short:         "Build and inspect NTX note packs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		buildCmd(logger),
		lsCmd(),
		catCmd(),
		infoCmd(),
		verifyCmd(logger),
	)

	if err := root.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func buildCmd(logger *slog.Logger) *cobra.Command {
	var (
		out    string
		bundle string
		target int
		hard   int
		alg    int
	)

	cmd := &cobra.Command{
		Use:   "build <notes-dir>",
		Short: "Build a pack from a directory of note files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := readSources(args[0])
			if err != nil {
				return err
			}
			logger.Info("collected notes", "dir", args[0], "count", len(sources))

			builder := ntx.Builder{
				Splitter:  ntx.Splitter{Target: target, Hard: hard},
				Algorithm: alg,
			}
			pack, err := builder.Build(sources)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
			for name, data := range pack.Objects {
				if err := os.WriteFile(filepath.Join(out, name+".bin"), data, 0o644); err != nil {
					return err
				}
			}

			manifest, err := pack.Manifest.Encode()
			if err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(out, "pack_manifest.json"), manifest, 0o644); err != nil {
				return err
			}

			if bundle != "" {
				f, err := os.Create(bundle)
				if err != nil {
					return err
				}
				if err := ntx.WriteBundle(f, pack.Objects); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				logger.Info("wrote bundle", "path", bundle)
			}

			logger.Info("built pack", "out", out, "objects", len(pack.Objects))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "dist", "output directory for pack objects")
	cmd.Flags().StringVar(&bundle, "bundle", "", "also write a single-file bundle archive")
	cmd.Flags().IntVar(&target, "target-bytes", ntx.DefaultTargetBytes, "preferred chunk size in bytes")
	cmd.Flags().IntVar(&hard, "hard-bytes", ntx.DefaultHardBytes, "chunk size cap before a mid-word split")
	cmd.Flags().IntVar(&alg, "alg", ntx.AlgXXHash3, "manifest digest algorithm (1=xxh3, 2=fnv1a, 3=blake2b)")
	return cmd
}

func lsCmd() *cobra.Command {
	var pack, bundle string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the notes in a pack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closer, err := openStorage(pack, bundle)
			if err != nil {
				return err
			}
			defer closer()

			index, err := ntx.LoadIndex(st)
			if err != nil {
				return err
			}
			for _, n := range index.Notes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%5d  %-40s  %d chunks in %d parts\n",
					n.NoteID, n.Title, n.TotalChunks, n.PartCount)
			}
			return nil
		},
	}

	addStorageFlags(cmd, &pack, &bundle)
	return cmd
}

func catCmd() *cobra.Command {
	var pack, bundle string

	cmd := &cobra.Command{
		Use:   "cat <note> [chunk]",
		Short: "Print a note's chunk text (all chunks when no index is given)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closer, err := openStorage(pack, bundle)
			if err != nil {
				return err
			}
			defer closer()

			index, err := ntx.LoadIndex(st)
			if err != nil {
				return err
			}
			note, err := findNote(index, args[0])
			if err != nil {
				return err
			}

			first, last := uint16(0), note.TotalChunks
			if len(args) == 2 {
				i, err := strconv.ParseUint(args[1], 10, 16)
				if err != nil {
					return fmt.Errorf("chunk index %q: %w", args[1], err)
				}
				first, last = uint16(i), uint16(i)+1
			}

			for i := first; i < last; i++ {
				chunk, err := ntx.LoadChunk(st, note, i)
				if err != nil {
					return err
				}
				io.WriteString(cmd.OutOrStdout(), chunk.Text)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	addStorageFlags(cmd, &pack, &bundle)
	return cmd
}

func infoCmd() *cobra.Command {
	var pack, bundle string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Summarise a pack's index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closer, err := openStorage(pack, bundle)
			if err != nil {
				return err
			}
			defer closer()

			index, err := ntx.LoadIndex(st)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "notes: %d\n", index.Len())
			for _, n := range index.Notes() {
				lastPart := n.FirstPartID + n.PartCount - 1
				fmt.Fprintf(w, "note %d %q: parts %s..%s, %d chunks, %d text bytes\n",
					n.NoteID, n.Title, ntx.PartName(n.FirstPartID), ntx.PartName(lastPart),
					n.TotalChunks, n.TotalTextBytes)
			}
			return nil
		},
	}

	addStorageFlags(cmd, &pack, &bundle)
	return cmd
}

func verifyCmd(logger *slog.Logger) *cobra.Command {
	var pack, bundle, manifestPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Recompute object digests against a build manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(manifestPath)
			if err != nil {
				return err
			}
			manifest, err := ntx.DecodeManifest(data)
			if err != nil {
				return err
			}

			st, closer, err := openStorage(pack, bundle)
			if err != nil {
				return err
			}
			defer closer()

			if err := ntx.Verify(st, manifest); err != nil {
				return err
			}
			logger.Info("pack verified", "objects", len(manifest.Objects))
			return nil
		},
	}

	addStorageFlags(cmd, &pack, &bundle)
	cmd.Flags().StringVar(&manifestPath, "manifest", "dist/pack_manifest.json", "manifest file to verify against")
	return cmd
}

func addStorageFlags(cmd *cobra.Command, pack, bundle *string) {
	cmd.Flags().StringVar(pack, "pack", "dist", "pack directory of .bin objects")
	cmd.Flags().StringVar(bundle, "from-bundle", "", "read objects from a bundle archive instead")
}

// openStorage opens either a pack directory or a bundle archive.
func openStorage(pack, bundle string) (ntx.Storage, func() error, error) {
	if bundle != "" {
		f, err := os.Open(bundle)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		mem, err := ntx.ReadBundle(f)
		if err != nil {
			return nil, nil, err
		}
		return mem, func() error { return nil }, nil
	}

	dir, err := ntx.OpenDir(pack)
	if err != nil {
		return nil, nil, err
	}
	return dir, dir.Close, nil
}

// findNote resolves a note selector: a numeric note id first, then an
// exact title, then a unique title prefix.
func findNote(index *ntx.Index, sel string) (ntx.Note, error) {
	if id, err := strconv.ParseUint(sel, 10, 16); err == nil {
		for _, n := range index.Notes() {
			if n.NoteID == uint16(id) {
				return n, nil
			}
		}
	}

	var matches []ntx.Note
	for _, n := range index.Notes() {
		if n.Title == sel {
			return n, nil
		}
		if strings.HasPrefix(n.Title, sel) {
			matches = append(matches, n)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return ntx.Note{}, fmt.Errorf("note %q is ambiguous (%d matches)", sel, len(matches))
	}
	return ntx.Note{}, fmt.Errorf("no note %q", sel)
}

// readSources collects note files from a directory in sorted name order.
// Markdown files go through the markdown ingester; anything else is read
// as plain text with the filename as title. Dotfiles and the manifest are
// skipped.
func readSources(dir string) ([]ntx.NoteSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.EqualFold(e.Name(), "manifest.json") || strings.EqualFold(e.Name(), "pack_manifest.json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no note files in %s", dir)
	}

	sources := make([]ntx.NoteSource, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(filepath.Ext(name), ".md") {
			sources = append(sources, ntx.NoteFromMarkdown(data, name))
			continue
		}
		title := strings.TrimSuffix(name, filepath.Ext(name))
		sources = append(sources, ntx.NoteSource{Title: title, Text: string(data)})
	}
	return sources, nil
}
