package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sdl3gen/internal/prof"
	"sdl3gen/internal/trace"
)

// session is the per-invocation state set up by the root command.
type session struct {
	tracer  trace.Tracer
	ring    *trace.RingTracer
	profile *prof.Session
}

var current session

func setupSession(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	cpu, _ := flags.GetString("cpuprofile")
	mem, _ := flags.GetString("memprofile")
	rt, _ := flags.GetString("runtime-trace")
	p, err := prof.Start(prof.Options{CPU: cpu, Mem: mem, Trace: rt})
	if err != nil {
		return err
	}
	current.profile = p

	if err := setupTracing(cmd); err != nil {
		_ = p.Stop()
		return err
	}
	return nil
}

// setupTracing reads the trace flags and attaches a tracer to the command
// context.
func setupTracing(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	traceOutput, _ := flags.GetString("trace")
	levelStr, _ := flags.GetString("trace-level")
	modeStr, _ := flags.GetString("trace-mode")
	formatStr, _ := flags.GetString("trace-format")
	ringSize, _ := flags.GetInt("trace-ring-size")

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	// --trace alone implies phase level
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(ctx, trace.Nop))
		return nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	}
	// the ring is kept separately so a failed run can dump it
	var tracer trace.Tracer
	switch mode {
	case trace.ModeRing:
		current.ring = trace.NewRingTracer(cfg.RingSize, level)
		tracer = current.ring
	default:
		tracer, err = trace.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to create tracer: %w", err)
		}
	}
	current.tracer = tracer
	cmd.SetContext(trace.WithTracer(ctx, tracer))
	return nil
}

// dumpRing writes the ring tracer's events to stderr after a failure.
func dumpRing(cmd *cobra.Command) {
	if current.ring == nil {
		return
	}
	formatStr, _ := cmd.Root().PersistentFlags().GetString("trace-format")
	format, err := trace.ParseFormat(formatStr)
	if err != nil || format == trace.FormatAuto {
		format = trace.FormatText
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "trace: last events before the failure")
	if err := current.ring.Dump(cmd.ErrOrStderr(), format); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
	}
}

func closeSession(cmd *cobra.Command) {
	if t := current.tracer; t != nil {
		if err := t.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := t.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	if err := current.profile.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "profile: %v\n", err)
	}
	current = session{}
}
