// posterctl is a small operator CLI for the light engine's HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"posterlights/internal/apiclient"
	"posterlights/internal/engine"
)

var (
	engineURL string
	timeout   time.Duration
)

func client() *apiclient.Client {
	return apiclient.New(engineURL, timeout)
}

func cmdCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout+time.Second)
}

// report prints the engine's answer and fails the command on a rejection so
// scripts can rely on the exit code.
func report(res engine.Result, err error) error {
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("rejected: %s", res.Message)
	}
	if res.Show != "" {
		fmt.Printf("ok: %s for %ds\n", res.Show, res.Seconds)
	} else {
		fmt.Println("ok")
	}
	return nil
}

func main() {
	root := &cobra.Command{
		Use:           "posterctl",
		Short:         "Control the poster light engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&engineURL, "engine", "http://127.0.0.1:8090", "engine base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Second, "request timeout")

	root.AddCommand(
		statusCmd(),
		onOffCmd("on", "Enable output", true),
		onOffCmd("off", "Disable output and blank the strip", false),
		idleCmd(),
		showCmd(),
		eventCmd(),
		progressCmd(),
		demoCmd(),
		configCmd(),
		arcCmd(),
		progressModeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "posterctl:", err)
		os.Exit(1)
	}
}

func onOffCmd(use, short string, on bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := cmdCtx(cmd)
			defer cancel()
			if on {
				return report(client().Enable(ctx))
			}
			return report(client().Disable(ctx))
		},
	}
}

func idleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "idle <name>",
		Short: "Select the idle effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx(cmd)
			defer cancel()
			return report(client().SetIdle(ctx, args[0]))
		},
	}
}

func showCmd() *cobra.Command {
	var seconds int
	cmd := &cobra.Command{
		Use:   "show <name|stop>",
		Short: "Start a timed show, or stop the running one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx(cmd)
			defer cancel()
			if args[0] == "stop" {
				return report(client().StopShow(ctx))
			}
			return report(client().StartShow(ctx, args[0], seconds))
		},
	}
	cmd.Flags().IntVar(&seconds, "seconds", 0, "show duration (0 = server default)")
	return cmd
}

func eventCmd() *cobra.Command {
	var seconds int
	cmd := &cobra.Command{
		Use:   "event <name>",
		Short: "Trigger a named event (rotates through its show pool)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx(cmd)
			defer cancel()
			return report(client().TriggerEvent(ctx, args[0], seconds))
		},
	}
	cmd.Flags().IntVar(&seconds, "seconds", 0, "override the event's duration")
	return cmd
}

func progressCmd() *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "progress <fraction>",
		Short: "Push a playback progress update",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("fraction must be a number: %w", err)
			}
			ctx, cancel := cmdCtx(cmd)
			defer cancel()
			return report(client().PushProgress(ctx, pct, state))
		},
	}
	cmd.Flags().StringVar(&state, "state", "playing", "playing | paused | stopped")
	return cmd
}

func demoCmd() *cobra.Command {
	var interval int
	cmd := &cobra.Command{
		Use:   "demo <on|off>",
		Short: "Toggle idle-rotation demo mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx(cmd)
			defer cancel()
			return report(client().SetDemo(ctx, args[0] == "on", interval))
		},
	}
	cmd.Flags().IntVar(&interval, "interval", 0, "rotation interval in seconds")
	return cmd
}

func configCmd() *cobra.Command {
	var brightness, speed float64
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Set global brightness and speed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := cmdCtx(cmd)
			defer cancel()
			return report(client().SetConfig(ctx, brightness, speed))
		},
	}
	cmd.Flags().Float64Var(&brightness, "brightness", -1, "brightness 0..1 (-1 keeps current)")
	cmd.Flags().Float64Var(&speed, "speed", -1, "speed 0.2..3.0 (-1 keeps current)")
	return cmd
}

func arcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "arc <start> <end>",
		Short: "Set the progress arc pixel range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("start must be an integer: %w", err)
			}
			end, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("end must be an integer: %w", err)
			}
			ctx, cancel := cmdCtx(cmd)
			defer cancel()
			return report(client().SetArc(ctx, start, end))
		},
	}
}

func progressModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress-mode <on|off>",
		Short: "Gate whether live progress preempts shows and idle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx(cmd)
			defer cancel()
			return report(client().SetProgressMode(ctx, args[0] == "on"))
		},
	}
}
