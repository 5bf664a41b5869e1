package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"anemone/src/config"
	"anemone/src/eventloop"
	"anemone/src/launcher"
	"anemone/src/logutil"
	"anemone/src/mode"
	"anemone/src/notification"
	"anemone/src/overlay"
	"anemone/src/runtimeinit"
	"anemone/src/session"
	"anemone/src/settings"
	"anemone/src/singleinstance"
)

type mainOptions struct {
	configPath string
	mode       string
	verbose    bool
}

func main() {
	// Overlay windows and their message queue live on this thread.
	runtime.LockOSThread()
	os.Exit(runWithArgs(normalizeLegacyArgs(os.Args)))
}

func runWithArgs(args []string) int {
	if len(args) == 0 {
		args = []string{"anemone"}
	}

	opts := &mainOptions{}
	code := eventloop.ExitOK
	cmd := newRootCmd(opts)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		m, fixed, err := opts.fixedMode()
		if err != nil {
			return err
		}
		code = runApp(cmd.Context(), *opts, m, fixed)
		return nil
	}
	cmd.SetArgs(args[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return eventloop.ExitFailure
	}
	return code
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "anemone",
		Short:         "Layered screen overlays for clipping, captions and reading guides",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to the settings file (overrides "+config.StorePathEnvVar+")")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "Open one overlay (clip, caption, transparent), print the result and exit")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	return cmd
}

func (o mainOptions) fixedMode() (mode.Mode, bool, error) {
	if strings.TrimSpace(o.mode) == "" {
		return 0, false, nil
	}
	m, err := mode.Parse(o.mode)
	if err != nil {
		return 0, false, err
	}
	return m, true, nil
}

func runApp(parent context.Context, opts mainOptions, m mode.Mode, fixed bool) int {
	if parent == nil {
		parent = context.Background()
	}
	if opts.verbose {
		logutil.SetupStderr()
	}
	enableDPIAwareness()

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{StorePathOverride: opts.configPath},
		SetupLogging: func(c *config.Config) {
			if !opts.verbose {
				logutil.Setup(c.EnableFileLogging, c.LogFile)
			}
		},
	})
	if err != nil {
		notification.ShowBlockingError("Anemone", fmt.Sprintf("Startup failed: %v", err))
		return eventloop.ExitFailure
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.StoreTarget{Store: cfg.Store}
	var l launcher.Launcher
	var sink overlay.Sink
	if fixed {
		if code, delegated := delegate(ctx, m); delegated {
			return code
		}
		log.Printf("Running single %s overlay", m)
		l = &launcher.Fixed{Mode: m}
		sink = session.Targets{session.StdoutTarget{}, store}
	} else {
		if port, running := singleinstance.DetectResident(ctx); running {
			log.Printf("Resident already listening on port %d, exiting", port)
			notification.ShowBlockingError("Anemone", "Anemone is already running in the notification area.")
			return eventloop.ExitOK
		}
		tray := launcher.NewTray(cfg)
		tray.Start()
		defer tray.Close()

		srv := singleinstance.NewServer()
		if err := srv.Start(ctx); err != nil {
			log.Printf("Delegation disabled: %v", err)
		} else {
			defer srv.Close()
			go tray.Serve(ctx, srv)
		}

		l = tray
		sink = session.Targets{session.ClipboardTarget{}, store}
	}

	dialogs := notification.Desktop{}
	runner := &overlay.Runner{
		Platform: overlay.NewPlatform(),
		Config:   cfg,
		Sink:     sink,
		Notifier: dialogs,
	}
	loop := eventloop.New(eventloop.Options{
		Launcher: l,
		Runner:   runner,
		Settings: &settings.Editor{Config: cfg},
		Store:    cfg.Store,
		Dialogs:  dialogs,
		OnResult: func(res overlay.Result) {
			if res.Outcome == overlay.Committed {
				log.Printf("Committed %s: %q", res.Mode, logutil.Sanitize(session.Text(res.Payload), 100))
			}
		},
	})

	log.Printf("Anemone initialized")
	code := loop.Run(ctx)
	log.Printf("Anemone exiting with code %d", code)
	return code
}

// delegate hands m to a resident instance, if one is running, and prints
// its committed text. It reports whether the request was delegated.
func delegate(ctx context.Context, m mode.Mode) (int, bool) {
	delegated, reply, err := singleinstance.NewClient().TryRun(ctx, m)
	if !delegated {
		return 0, false
	}
	if err != nil {
		log.Printf("Delegated %s overlay failed: %v", m, err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return eventloop.ExitFailure, true
	}
	log.Printf("Delegated %s overlay to resident (committed=%v)", m, reply.Committed)
	if reply.Committed {
		fmt.Println(reply.Text)
	}
	return eventloop.ExitOK, true
}

// normalizeLegacyArgs maps single-dash long flags (-mode) to the GNU form cobra expects.
func normalizeLegacyArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		for _, name := range []string{"config", "mode", "verbose"} {
			flag := "-" + name
			if out[i] == flag || strings.HasPrefix(out[i], flag+"=") {
				out[i] = "-" + out[i]
			}
		}
	}
	return out
}
