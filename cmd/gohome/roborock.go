package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joshp123/gohome-s5/plugins/roborock"
)

func s5Main(args []string) {
	if len(args) == 0 {
		s5Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "check-markers":
		s5CheckMarkersCmd(args[1:])
	case "fan-speeds":
		s5FanSpeedsCmd(args[1:])
	default:
		s5Usage()
		os.Exit(2)
	}
}

func s5Usage() {
	fmt.Println("gohome s5 <command> [args]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  check-markers [--file path]   validate markers and print the device payload")
	fmt.Println("  fan-speeds [--msg-ver n]      print the fan speed table for a firmware version")
}

// s5CheckMarkersCmd runs the save_map preparation offline: validation, Y flip, weight budget.
func s5CheckMarkersCmd(args []string) {
	flags := flag.NewFlagSet("s5 check-markers", flag.ExitOnError)
	file := flags.String("file", "", "Markers JSON file (default: stdin)")
	_ = flags.Parse(args)

	var reader io.Reader = os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			fatal("s5 check-markers", err)
		}
		defer f.Close()
		reader = f
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		fatal("s5 check-markers", err)
	}

	markers, err := roborock.ParsePersistentData(raw)
	if err != nil {
		fatal("s5 check-markers", err)
	}
	flipped, weight, err := roborock.PrepareMarkers(markers)
	if err != nil {
		if errors.Is(err, roborock.ErrCapacityExceeded) {
			fmt.Fprintf(os.Stderr, "weight %d/%d\n", weight, roborock.MaxMarkerWeight)
		}
		fatal("s5 check-markers", err)
	}

	payload, err := json.Marshal(roborock.EncodeMarkers(flipped))
	if err != nil {
		fatal("s5 check-markers", err)
	}
	fmt.Printf("weight: %d/%d\n", weight, roborock.MaxMarkerWeight)
	fmt.Printf("save_map: %s\n", payload)
}

func s5FanSpeedsCmd(args []string) {
	flags := flag.NewFlagSet("s5 fan-speeds", flag.ExitOnError)
	msgVer := flags.Int("msg-ver", 0, "Firmware msg_ver")
	_ = flags.Parse(args)

	table := roborock.CapabilitiesFor(*msgVer).FanSpeeds
	for _, level := range table.Levels() {
		spec, _ := table.Lookup(level)
		fmt.Printf("%-7s %-7s %d\n", level, spec.Label, spec.Value)
	}
}

func fatal(action string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", action, err)
	os.Exit(1)
}
