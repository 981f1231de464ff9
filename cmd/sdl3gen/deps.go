package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sdl3gen/internal/driver"
	"sdl3gen/internal/project/dag"
)

var depsCmd = &cobra.Command{
	Use:   "deps [flags]",
	Short: "Show the include graph of the header directory",
	Long: `Deps parses the headers and prints, per module, the SDL headers it
includes, the parallel batches of a dependency-first traversal and the
hash that decides whether generated output is stale.`,
	Args: cobra.NoArgs,
	RunE: runDeps,
}

func init() {
	addManifestFlags(depsCmd)
	depsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type depsModule struct {
	Module   string   `json:"module"`
	Includes []string `json:"includes,omitempty"`
	Hash     string   `json:"hash"`
}

type depsOutput struct {
	Modules []depsModule `json:"modules"`
	Batches [][]string   `json:"batches"`
	Cyclic  []string     `json:"cyclic,omitempty"`
}

func runDeps(cmd *cobra.Command, _ []string) error {
	m, err := resolveManifest(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	maxDiag, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	headers, err := driver.Discover(m.Source, m.Exclude)
	if err != nil {
		return err
	}
	set, err := driver.ParseHeaders(cmd.Context(), headers, driver.ParseOptions{Jobs: m.Jobs, MaxDiagnostics: maxDiag})
	if err != nil {
		return err
	}
	graph := driver.BuildIncludeGraph(set)
	if err := printDiagnostics(cmd, set.Diagnostics(maxDiag), set.FileSet); err != nil {
		return err
	}
	if err := set.FirstError(); err != nil {
		return errReported
	}

	out := buildDepsOutput(graph)
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if format != "pretty" {
		return fmt.Errorf("unknown format: %s", format)
	}

	w := cmd.OutOrStdout()
	for _, mod := range out.Modules {
		fmt.Fprintf(w, "%-16s %s  %s\n", mod.Module, mod.Hash[:12], strings.Join(mod.Includes, " "))
	}
	fmt.Fprintln(w)
	for i, batch := range out.Batches {
		fmt.Fprintf(w, "batch %d: %s\n", i, strings.Join(batch, " "))
	}
	if len(out.Cyclic) > 0 {
		fmt.Fprintf(w, "in include cycles: %s\n", strings.Join(out.Cyclic, " "))
	}
	return nil
}

func buildDepsOutput(g *driver.IncludeGraph) depsOutput {
	var out depsOutput
	name := func(id dag.HeaderID) string { return g.Index.IDToName[int(id)] }
	for _, slot := range g.Slots {
		if !slot.Present {
			continue
		}
		mod := slot.Meta.Module
		out.Modules = append(out.Modules, depsModule{
			Module:   mod,
			Includes: g.Includes(mod),
			Hash:     hex.EncodeToString(slot.Meta.ModuleHash[:]),
		})
	}
	for _, batch := range g.Topo.Batches {
		names := make([]string, len(batch))
		for i, id := range batch {
			names[i] = name(id)
		}
		out.Batches = append(out.Batches, names)
	}
	for _, id := range g.Topo.Cycles {
		out.Cyclic = append(out.Cyclic, name(id))
	}
	return out
}
