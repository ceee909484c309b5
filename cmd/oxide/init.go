package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"oxide/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create oxide.toml and a hello-world crate root",
	Long: `Initialize a project by writing oxide.toml with the default settings and
src/main.rs. If [path] is omitted, the current directory is used; a missing
directory is created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const defaultMainRS = `//! Entry point created by oxide init.

mod greeting {
    pub fn hello() -> &'static str {
        "Hello, world!"
    }
}

fn main() {
    println!("{}", greeting::hello());
}
`

// initResult: что создано в каталоге проекта
type initResult struct {
	root        string
	created     []string
	mainExisted bool
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	res, err := initProject(target)
	if err != nil {
		return err
	}

	rel := res.root
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, res.root); err2 == nil {
			rel = r
		}
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized oxide project in %s\n", rel)
	for _, name := range res.created {
		fmt.Fprintf(out, "  - %s\n", name)
	}
	if res.mainExisted {
		fmt.Fprintf(out, "  - src/main.rs (existing)\n")
	}
	return nil
}

// initProject пишет oxide.toml и src/main.rs; повторная инициализация запрещена.
func initProject(target string) (initResult, error) {
	root, err := filepath.Abs(target)
	if err != nil {
		return initResult{}, err
	}
	if st, err := os.Stat(root); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return initResult{}, err
		}
		if err = os.MkdirAll(root, 0o755); err != nil {
			return initResult{}, fmt.Errorf("failed to create directory %q: %w", root, err)
		}
	} else if !st.IsDir() {
		return initResult{}, fmt.Errorf("%q is not a directory", root)
	}

	manifestPath := filepath.Join(root, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return initResult{}, fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	manifest, err := project.DefaultConfig().Encode()
	if err != nil {
		return initResult{}, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o600); err != nil {
		return initResult{}, fmt.Errorf("failed to write manifest: %w", err)
	}
	res := initResult{root: root, created: []string{project.ManifestName}}

	mainPath := filepath.Join(root, "src", "main.rs")
	if _, err := os.Stat(mainPath); err == nil {
		res.mainExisted = true
		return res, nil
	}
	if err := os.MkdirAll(filepath.Dir(mainPath), 0o755); err != nil {
		return res, fmt.Errorf("failed to create src: %w", err)
	}
	if err := os.WriteFile(mainPath, []byte(defaultMainRS), 0o600); err != nil {
		return res, fmt.Errorf("failed to write main.rs: %w", err)
	}
	res.created = append(res.created, "src/main.rs")
	return res, nil
}
