package main

import (
	"fmt"
	"io"
	"os"
)

func readStdin() ([]byte, error) {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return src, nil
}

// targetKind: что передано в аргументе команды
type targetKind int

const (
	targetFile targetKind = iota
	targetDir
	targetStdin
)

func classifyTarget(path string) (targetKind, error) {
	if path == "-" {
		return targetStdin, nil
	}
	st, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat path: %w", err)
	}
	if st.IsDir() {
		return targetDir, nil
	}
	return targetFile, nil
}
