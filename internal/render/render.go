// Package render turns a drift report into its two output formats: a
// human-readable text summary and deterministic indented JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"rpcdrift/internal/domain/entity"
)

// WriteJSON serializes the report as indented JSON. Key order follows the
// report's field declaration order, so identical reports always produce
// byte-identical output.
func WriteJSON(w io.Writer, report entity.DriftReport) error {
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode drift report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}

// printer writes lines until one fails, then swallows the rest and keeps
// the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(line string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, line)
}

// WriteHuman renders the report as labeled text sections: one per
// endpoint, then the drift analysis. Missing values render as "n/a" and
// unknown drift is stated explicitly rather than omitted. The first write
// failure aborts the remaining output and is returned.
func WriteHuman(w io.Writer, report entity.DriftReport) error {
	p := &printer{w: w}

	p.println("rpc-drift-probe")

	writeSnapshot(p, "[Primary]  ", report.Primary)
	writeSnapshot(p, "[Secondary]", report.Secondary)

	p.println("")
	p.println("Drift analysis:")
	if !report.ConsistentChain {
		p.println("  Warning: chain IDs differ or endpoints are offline; drift metrics may be invalid.")
	}

	if report.BlockDiff == nil {
		p.println("  Block drift   : unknown")
	} else {
		direction := "aligned"
		if *report.BlockDiff > 0 {
			direction = "ahead"
		} else if *report.BlockDiff < 0 {
			direction = "behind"
		}
		p.printf("  Block drift   : %d blocks (%s vs primary)\n", *report.BlockDiff, direction)
	}

	if report.TimeDiffSec == nil {
		p.println("  Time drift    : unknown")
	} else {
		p.printf("  Time drift    : %.2f seconds (secondary minus primary)\n", *report.TimeDiffSec)
	}

	return p.err
}

func writeSnapshot(p *printer, header string, snap entity.EndpointSnapshot) {
	connected := "no"
	if snap.Connected {
		connected = "yes"
	}

	p.println("")
	p.printf("%s %s\n", header, snap.Label)
	p.printf("  RPC URL       : %s\n", snap.RPCURL)
	p.printf("  Connected     : %s\n", connected)
	p.printf("  Chain ID      : %s\n", formatInt(snap.ChainID))
	p.printf("  Latest block  : %s\n", formatInt(snap.LatestBlock))
	p.printf("  Block time    : %s\n", formatInt(snap.LatestTimestamp))
	p.printf("  Latency (ms)  : %s\n", formatLatency(snap.LatencyMs))
	if snap.Error != nil {
		p.printf("  Error         : %s\n", *snap.Error)
	}
}

func formatInt(value *int64) string {
	if value == nil {
		return "n/a"
	}
	return strconv.FormatInt(*value, 10)
}

func formatLatency(value *float64) string {
	if value == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *value)
}
