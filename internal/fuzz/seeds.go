package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB - ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

func addCorpusSeeds(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("fn main() {}\n"))
	addTestdataSeeds(f)
	addCaseSeeds(f)
}

// addTestdataSeeds: все *.rs из testdata парсера
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "parser", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".rs" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

// addCaseSeeds берёт src из таблицы случаев парсера
func addCaseSeeds(f *testing.F) {
	// #nosec G304 -- path is a fixed repository location
	data, err := os.ReadFile(filepath.Join("..", "parser", "testdata", "cases.yaml"))
	if err != nil {
		return
	}
	var cases []struct {
		Src string `yaml:"src"`
	}
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return
	}
	for _, c := range cases {
		f.Add(clampSeed([]byte(c.Src)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
