package main

import (
	"fmt"
	"os"
	"strings"

	"oxide/internal/driver"
	"oxide/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI: прогресс рисуется в stderr, auto включает его только
// для терминала и без --quiet
func shouldUseTUI(mode uiMode, quiet bool) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return !quiet && isTerminal(os.Stderr)
	}
}

// withProgress запускает run в горутине и показывает прогресс по его событиям.
func withProgress[T any](title string, mode uiMode, opts driver.Options, run func(driver.Options) (T, error)) (T, error) {
	if !shouldUseTUI(mode, sess.quiet) {
		return run(opts)
	}
	events := make(chan driver.Event, 256)
	type outcome struct {
		res T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := run(opts)
		close(events)
		done <- outcome{res: res, err: err}
	}()

	uiErr := ui.RunProgress(os.Stderr, title, nil, events)
	if uiErr != nil {
		// UI упал: дочитываем события, чтобы воркеры не встали
		for range events {
		}
	}
	out := <-done
	if uiErr != nil && out.err == nil {
		return out.res, uiErr
	}
	return out.res, out.err
}
