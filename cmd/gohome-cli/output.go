package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// outputMode renders S5 responses either as raw JSON or as a human summary.
type outputMode struct {
	json bool
	w    io.Writer
}

func newOutputMode(jsonOutput bool) outputMode {
	return outputMode{json: jsonOutput, w: os.Stdout}
}

// response prints resp as JSON in json mode, otherwise hands its fields to summary.
func (o outputMode) response(resp *structpb.Struct, summary func(fields map[string]any)) {
	if o.json {
		data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(resp)
		if err != nil {
			fatal("format json", err)
		}
		fmt.Fprintln(o.w, string(data))
		return
	}
	summary(resp.AsMap())
}

func (o outputMode) ok(message string) {
	if o.json {
		fmt.Fprintln(o.w, `{"status": "ok"}`)
		return
	}
	fmt.Fprintln(o.w, "ok: "+message)
}

func (o outputMode) table(header []string, rows [][]string) {
	w := tabwriter.NewWriter(o.w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func listField(fields map[string]any, name string) []map[string]any {
	items, _ := fields[name].([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// numberString prints Struct numbers without the float exponent noise.
func numberString(value any) string {
	if f, ok := value.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}
