package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joshp123/gohome-s5/plugins/roborock"
)

type s5Client struct {
	conn *grpc.ClientConn
}

func (c s5Client) call(ctx context.Context, method string, req map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, "/"+roborock.ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// mustCall invokes method and exits with a labelled error on failure.
func (c s5Client) mustCall(ctx context.Context, label, method string, req map[string]any) *structpb.Struct {
	resp, err := c.call(ctx, method, req)
	if err != nil {
		fatal(label, err)
	}
	return resp
}

func s5Cmd(ctx context.Context, conn *grpc.ClientConn, args []string, jsonOutput bool) {
	out := newOutputMode(jsonOutput)
	if len(args) == 0 {
		s5Usage()
		os.Exit(2)
	}

	client := s5Client{conn: conn}
	switch args[0] {
	case "caps":
		resp := client.mustCall(ctx, "s5 caps", "GetCapabilities", nil)
		out.response(resp, func(fields map[string]any) {
			fmt.Fprintf(out.w, "MSG_VER: %s\n", numberString(fields["msg_ver"]))
			fmt.Fprintf(out.w, "GEN3:    %v\n", fields["supports_gen3"])
			var rows [][]string
			for _, item := range listField(fields, "fan_speeds") {
				rows = append(rows, []string{fmt.Sprint(item["level"]), fmt.Sprint(item["label"]), numberString(item["value"])})
			}
			out.table([]string{"LEVEL", "LABEL", "VALUE"}, rows)
		})
	case "status":
		resp := client.mustCall(ctx, "s5 status", "GetStatus", nil)
		out.response(resp, func(fields map[string]any) {
			fmt.Fprintf(out.w, "STATE:   %v\n", fields["state"])
			fmt.Fprintf(out.w, "BATTERY: %s%%\n", numberString(fields["battery_percent"]))
			fmt.Fprintf(out.w, "MSG_VER: %s\n", numberString(fields["msg_ver"]))
			if code := numberString(fields["error_code"]); code != "0" {
				fmt.Fprintf(out.w, "ERROR:   %s\n", code)
			}
		})
	case "fan":
		if len(args) < 2 {
			fatal("s5 fan", fmt.Errorf("usage: gohome-cli s5 fan <min|low|medium|high|max|mop>"))
		}
		level, err := resolveFanLevel(strings.Join(args[1:], " "))
		if err != nil {
			fatal("s5 fan", err)
		}
		resp := client.mustCall(ctx, "s5 fan", "SetFanSpeed", map[string]any{"level": level})
		out.response(resp, func(fields map[string]any) {
			out.ok(fmt.Sprintf("fan %v (%s)", fields["label"], numberString(fields["value"])))
		})
	case "lab":
		if len(args) < 2 {
			fatal("s5 lab", fmt.Errorf("usage: gohome-cli s5 lab on|off"))
		}
		enabled, err := parseOnOff(args[1])
		if err != nil {
			fatal("s5 lab", err)
		}
		client.mustCall(ctx, "s5 lab", "SetLabStatus", map[string]any{"enabled": enabled})
		out.ok("lab status " + args[1])
	case "timer":
		s5TimerCmd(ctx, client, out, args[1:])
	case "zones":
		raw, err := markersArg(args[1:])
		if err != nil {
			fatal("s5 zones", err)
		}
		resp := client.mustCall(ctx, "s5 zones", "SavePersistentData", map[string]any{"markers": raw})
		out.response(resp, func(fields map[string]any) {
			out.ok(fmt.Sprintf("saved markers (weight %s/%d)", numberString(fields["weight"]), roborock.MaxMarkerWeight))
		})
	case "backups":
		resp := client.mustCall(ctx, "s5 backups", "GetBackupMaps", nil)
		out.response(resp, func(fields map[string]any) {
			var rows [][]string
			for _, item := range listField(fields, "maps") {
				rows = append(rows, []string{fmt.Sprint(item["id"]), fmt.Sprint(item["timestamp"])})
			}
			out.table([]string{"ID", "TIMESTAMP"}, rows)
		})
	case "restore":
		if len(args) < 2 {
			fatal("s5 restore", fmt.Errorf("usage: gohome-cli s5 restore <backup-id>"))
		}
		resp := client.mustCall(ctx, "s5 restore", "RestoreBackupMap", map[string]any{"id": args[1]})
		out.response(resp, func(fields map[string]any) {
			out.ok(fmt.Sprintf("restore requested (%v)", fields["result"]))
		})
	default:
		s5Usage()
		os.Exit(2)
	}
}

func s5TimerCmd(ctx context.Context, client s5Client, out outputMode, args []string) {
	if len(args) < 2 {
		fatal("s5 timer", fmt.Errorf("usage: gohome-cli s5 timer add <cron> | del|on|off <id>"))
	}
	switch args[0] {
	case "add":
		resp := client.mustCall(ctx, "s5 timer add", "AddTimer", map[string]any{"cron": strings.Join(args[1:], " ")})
		out.response(resp, func(fields map[string]any) {
			out.ok(fmt.Sprintf("timer %v", fields["id"]))
		})
	case "del":
		client.mustCall(ctx, "s5 timer del", "DeleteTimer", map[string]any{"id": args[1]})
		out.ok("deleted timer " + args[1])
	case "on", "off":
		client.mustCall(ctx, "s5 timer "+args[0], "ToggleTimer", map[string]any{"id": args[1], "enabled": args[0] == "on"})
		out.ok("timer " + args[1] + " " + args[0])
	default:
		s5Usage()
		os.Exit(2)
	}
}

// markersArg returns the marker JSON from the argument, or stdin when absent.
func markersArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if isStdinTerminal() {
		return "", fmt.Errorf("usage: gohome-cli s5 zones '<markers json>' (or pipe JSON via stdin)")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func s5Usage() {
	fmt.Println("gohome-cli s5 <command> [args]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  caps")
	fmt.Println("  status")
	fmt.Println("  fan <min|low|medium|high|max|mop>")
	fmt.Println("  lab on|off")
	fmt.Println("  timer add <cron>")
	fmt.Println("  timer del|on|off <id>")
	fmt.Println("  zones '<markers json>' (or pipe JSON via stdin)")
	fmt.Println("  backups")
	fmt.Println("  restore <backup-id>")
}
