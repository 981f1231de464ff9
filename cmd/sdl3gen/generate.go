package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/buildpipeline"
	"sdl3gen/internal/driver"
	"sdl3gen/internal/emit"
	"sdl3gen/internal/project"
	"sdl3gen/internal/source"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags]",
	Short: "Generate the binding package",
	Long: `Generate parses every header of the source directory and replaces the
output directory with the generated package. Settings come from sdl3gen.toml
(searched upwards from the working directory), then SDL3GEN_* environment
variables, then flags.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

// addManifestFlags registers the flags resolveManifest reads.
func addManifestFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("manifest", "", "path to sdl3gen.toml (default: search upwards)")
	f.String("source", "", "header directory")
	f.String("output", "", "output package directory")
	f.String("package", "", "generated package name")
	f.String("revision", "", "upstream revision recorded in the package")
	f.String("baseline", "", "oldest SDL version targeted without build tags")
	f.StringSlice("exclude", nil, "extra header name patterns to skip")
	f.Int("jobs", 0, "parallel header parsers (0 = GOMAXPROCS)")
	f.Bool("no-metadata", false, "skip the metadata sub-package")
}

func init() {
	addManifestFlags(generateCmd)
	f := generateCmd.Flags()
	f.Bool("force", false, "regenerate even when the output is up to date")
	f.Bool("no-cache", false, "do not read or write the generation cache")
	f.Bool("dry-run", false, "run every stage except writing the output")
	f.String("ui", "auto", "progress display (auto|on|off)")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	m, err := resolveManifest(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	force, _ := flags.GetBool("force")
	noCache, _ := flags.GetBool("no-cache")
	dryRun, _ := flags.GetBool("dry-run")
	uiFlag, _ := flags.GetString("ui")
	uiMode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	maxDiag, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")

	opts := emit.DefaultOptions()
	opts.Package = m.Package
	opts.Baseline = m.Baseline
	opts.Revision = m.Revision
	opts.NoMetadata = !m.Metadata

	req := &buildpipeline.GenerateRequest{
		Source:         m.Source,
		Output:         m.Output,
		Exclude:        m.Exclude,
		Emit:           opts,
		Jobs:           m.Jobs,
		MaxDiagnostics: maxDiag,
		Force:          force,
		DryRun:         dryRun,
	}
	if !noCache {
		cache, err := driver.OpenGenCache("sdl3gen")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: generation cache disabled: %v\n", err)
		} else {
			req.Cache = cache
		}
	}

	var res *buildpipeline.GenerateResult
	if !quiet && shouldUseTUI(uiMode) {
		res, err = runGenerateWithUI(cmd.Context(), "sdl3gen "+displayDir(m.Source), req)
	} else {
		res, err = buildpipeline.Generate(cmd.Context(), req)
	}
	if res == nil {
		return err
	}

	if showTimings {
		driver.AppendTimings(res.Bag, "generate", m.Output, res.Report)
	}
	var fs *source.FileSet
	if res.Parse != nil {
		fs = res.Parse.FileSet
	}
	if perr := printDiagnostics(cmd, res.Bag, fs); perr != nil {
		return perr
	}
	if showTimings {
		printStageTimings(cmd.ErrOrStderr(), res.Timings)
	}
	if err != nil {
		if res.Bag.HasErrors() {
			return errReported
		}
		return err
	}
	if !quiet {
		printSummary(cmd, m, res, dryRun)
	}
	return nil
}

// resolveManifest layers sdl3gen.toml, the environment and flags.
func resolveManifest(cmd *cobra.Command) (project.Manifest, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("manifest")
	m := project.DefaultManifest()
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return m, err
		}
		found, ok, err := project.FindManifest(wd)
		if err != nil {
			return m, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		loaded, err := project.LoadManifest(path)
		if err != nil {
			return m, err
		}
		m = loaded
	}
	m = m.WithEnv()

	if flags.Changed("source") {
		m.Source, _ = flags.GetString("source")
	}
	if flags.Changed("output") {
		m.Output, _ = flags.GetString("output")
	}
	if flags.Changed("package") {
		m.Package, _ = flags.GetString("package")
	}
	if flags.Changed("revision") {
		m.Revision, _ = flags.GetString("revision")
	}
	if flags.Changed("baseline") {
		s, _ := flags.GetString("baseline")
		v, ok := ast.ParseVersion(s)
		if !ok {
			return m, fmt.Errorf("invalid --baseline %q (expected X.Y.Z)", s)
		}
		m.Baseline = v
	}
	if flags.Changed("exclude") {
		extra, _ := flags.GetStringSlice("exclude")
		m.Exclude = append(m.Exclude, extra...)
	}
	if flags.Changed("jobs") {
		m.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("no-metadata") {
		noMeta, _ := flags.GetBool("no-metadata")
		m.Metadata = !noMeta
	}

	var err error
	if m.Source, err = filepath.Abs(m.Source); err != nil {
		return m, err
	}
	if m.Output, err = filepath.Abs(m.Output); err != nil {
		return m, err
	}
	return m, nil
}

func printSummary(cmd *cobra.Command, m project.Manifest, res *buildpipeline.GenerateResult, dryRun bool) {
	out := cmd.OutOrStdout()
	switch {
	case res.UpToDate:
		fmt.Fprintf(out, "%s is up to date (%d headers)\n", displayDir(m.Output), len(res.Headers))
	case dryRun:
		fmt.Fprintf(out, "dry run: %d headers, %d files not written\n", len(res.Headers), len(res.Output.Files))
	default:
		fmt.Fprintf(out, "wrote %d files to %s from %d headers in %s\n",
			len(res.Output.Files), displayDir(m.Output), len(res.Headers),
			time.Duration(res.Report.TotalMS*float64(time.Millisecond)).Round(time.Millisecond))
	}
}

func displayDir(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !filepath.IsAbs(rel) && rel != "" && rel[0] != '.' {
		return rel
	}
	return path
}
