// Command wktconv converts between WKT and GeoJSON geometries, one input
// per line on stdin.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/linnea-strand/wkt-spatial-tools/internal/geomstats"
	"github.com/linnea-strand/wkt-spatial-tools/internal/model"
	"github.com/linnea-strand/wkt-spatial-tools/internal/wkt"
)

func main() {
	os.Exit(run())
}

func run() int {
	modePtr := flag.String("mode", "auto", "Conversion direction (auto, towkt, tojson)")
	statsPtr := flag.Bool("stats", false, "Append bbox and measurement stats to each GeoJSON output")
	flag.Parse()

	mode := strings.ToLower(*modePtr)
	switch mode {
	case "auto", "towkt", "tojson":
	default:
		fmt.Fprintf(os.Stderr, "wktconv: unknown mode %q\n", mode)
		return 2
	}

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	failures := 0
	lineNo := 0
	for in.Scan() {
		lineNo++
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if err := convertLine(out, mode, line, *statsPtr); err != nil {
			fmt.Fprintf(os.Stderr, "wktconv: line %d: %v\n", lineNo, err)
			failures++
		}
	}
	if err := in.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "wktconv: read stdin: %v\n", err)
		return 1
	}
	if failures > 0 {
		return 1
	}
	return 0
}

func convertLine(out *bufio.Writer, mode, line string, withStats bool) error {
	toWKT := mode == "towkt"
	if mode == "auto" {
		toWKT = strings.HasPrefix(line, "{")
	}

	if toWKT {
		var g model.Geometry
		if err := json.Unmarshal([]byte(line), &g); err != nil {
			return fmt.Errorf("decode geojson: %w", err)
		}
		s, err := wkt.Marshal(&g)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
		return nil
	}

	g, err := wkt.Parse(line)
	if err != nil {
		return err
	}
	if !withStats {
		b, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("encode geojson: %w", err)
		}
		out.Write(b)
		out.WriteByte('\n')
		return nil
	}

	doc := map[string]any{"geometry": g}
	if bb, ok := geomstats.Bounds(g); ok {
		doc["bbox"] = []float64{bb.MinLon, bb.MinLat, bb.MaxLon, bb.MaxLat}
	}
	if a := geomstats.Area(g); a > 0 {
		doc["area_m2"] = a
	}
	if l := geomstats.Length(g); l > 0 {
		doc["length_km"] = l
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	out.Write(b)
	out.WriteByte('\n')
	return nil
}
