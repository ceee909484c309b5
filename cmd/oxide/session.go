package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"oxide/internal/diagfmt"
	"oxide/internal/driver"
	"oxide/internal/observ"
	"oxide/internal/project"
)

// session: настройки одного запуска, собранные из oxide.toml и флагов
type session struct {
	cfg      project.Config
	manifest *project.Manifest

	color       bool
	quiet       bool
	timings     bool
	timingsJSON bool
	timer       *observ.Timer

	cleanup func()
}

var sess = &session{cfg: project.DefaultConfig(), cleanup: func() {}}

func startSession(cmd *cobra.Command, _ []string) error {
	s := &session{cfg: project.DefaultConfig(), cleanup: func() {}}
	flags := cmd.Root().PersistentFlags()

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if cfgPath != "" {
		if s.cfg, err = project.LoadConfig(cfgPath); err != nil {
			return err
		}
	} else if wd, err := os.Getwd(); err == nil {
		m, ok, err := project.LoadManifest(wd)
		if err != nil {
			return err
		}
		if ok {
			s.manifest = m
			s.cfg = m.Config
		}
	}

	if err := s.applyFlags(cmd); err != nil {
		return err
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	s.color = resolveColor(s.cfg.Output.Color, os.Stderr)
	color.NoColor = !resolveColor(s.cfg.Output.Color, os.Stdout)

	if s.timings || s.timingsJSON {
		s.timer = observ.NewTimer()
	}
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	stopTracing, err := setupTracing(cmd)
	if err != nil {
		stopProfiling()
		return err
	}
	s.cleanup = func() {
		stopTracing()
		stopProfiling()
	}
	sess = s
	return nil
}

func endSession() {
	cleanup := sess.cleanup
	sess.cleanup = func() {}
	cleanup()
}

// applyFlags переопределяет манифест только явно заданными флагами.
func (s *session) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var err error
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.timingsJSON, err = flags.GetBool("timings-json"); err != nil {
		return fmt.Errorf("failed to get timings-json flag: %w", err)
	}
	if flags.Changed("color") {
		if s.cfg.Output.Color, err = flags.GetString("color"); err != nil {
			return fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if flags.Changed("max-diagnostics") {
		if s.cfg.Parse.MaxDiagnostics, err = flags.GetUint("max-diagnostics"); err != nil {
			return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if flags.Changed("jobs") {
		if s.cfg.Project.Jobs, err = flags.GetInt("jobs"); err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	return nil
}

func resolveColor(mode string, f *os.File) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && isTerminal(f)
	}
}

func (s *session) options() driver.Options {
	opts := driver.OptionsFromConfig(s.cfg)
	opts.Timer = s.timer
	return opts
}

func (s *session) pathMode() diagfmt.PathMode {
	mode, err := diagfmt.ParsePathMode(s.cfg.Output.PathMode)
	if err != nil {
		return diagfmt.PathModeAuto
	}
	return mode
}

func (s *session) prettyOpts() diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{
		Color:     s.color,
		Context:   s.cfg.Output.Context,
		PathMode:  s.pathMode(),
		Width:     terminalWidth(os.Stderr),
		ShowNotes: true,
	}
}

// printTimings пишет сводку в stderr, если включены --timings.
func (s *session) printTimings(kind, path string) {
	if s.timer == nil {
		return
	}
	payload := driver.NewTimingPayload(kind, path, s.timer)
	if err := driver.WriteTimings(os.Stderr, payload, s.timingsJSON); err != nil {
		fmt.Fprintf(os.Stderr, "timings: %v\n", err)
	}
}
