package main

import (
	"fmt"
	"io"
	"time"

	"sdl3gen/internal/buildpipeline"
)

func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		fmt.Fprintf(out, "%-8s %8.1f ms\n", stage, toMillis(timings.Duration(stage)))
	}
	fmt.Fprintf(out, "%-8s %8.1f ms\n", "total", toMillis(timings.Sum(buildpipeline.Stages...)))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
