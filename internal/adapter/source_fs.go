// Package adapter contains the infrastructure adapters behind the domain
// interfaces: filesystem discovery, the embedded VM, and report persistence.
package adapter

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	m "github.com/mouse-blink/scenario/internal/model"
)

// LocalSourceFS implements domain.SourceFS against the real filesystem.
type LocalSourceFS struct{}

// NewLocalSourceFS creates a LocalSourceFS.
func NewLocalSourceFS() *LocalSourceFS {
	return &LocalSourceFS{}
}

// Discover collects scenario files under the provided roots. A root may be a
// single file, a directory, or a directory with the /... recursive suffix.
func (a *LocalSourceFS) Discover(roots []m.Path) ([]m.Source, error) {
	seen := make(map[string]struct{})

	var sources []m.Source

	add := func(path string) error {
		if !m.IsScenarioFile(m.Path(path)) {
			return nil
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		if _, exists := seen[abs]; exists {
			return nil
		}

		hash, err := a.HashFile(m.Path(abs))
		if err != nil {
			return err
		}

		seen[abs] = struct{}{}
		sources = append(sources, m.Source{
			Origin: m.Path(abs),
			Hash:   hash,
			Lang:   m.DetectLanguage(m.Path(abs)),
		})

		return nil
	}

	for _, root := range roots {
		rootStr, recursive, err := normalizeRootPath(string(root))
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(rootStr)
		if err != nil {
			return nil, fmt.Errorf("root path error: %w", err)
		}

		if !info.IsDir() {
			if err := add(rootStr); err != nil {
				return nil, err
			}

			continue
		}

		err = filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				if !recursive && path != rootStr {
					return filepath.SkipDir
				}

				return nil
			}

			return add(path)
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Origin < sources[j].Origin })

	return sources, nil
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFS) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content, creating parent directories as needed.
func (a *LocalSourceFS) WriteFile(path m.Path, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return os.WriteFile(string(path), content, 0o600)
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFS) HashFile(path m.Path) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func normalizeRootPath(root string) (string, bool, error) {
	rootStr, recursive := parseRootPath(root)

	if strings.HasPrefix(rootStr, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false, err
		}

		suffix := strings.TrimPrefix(rootStr, "~")
		suffix = strings.TrimPrefix(suffix, string(os.PathSeparator))
		rootStr = filepath.Join(home, suffix)
	}

	if rootStr == "" {
		rootStr = "."
	}

	return rootStr, recursive, nil
}

func parseRootPath(rootStr string) (path string, recursive bool) {
	if len(rootStr) >= 4 && rootStr[len(rootStr)-4:] == "/..." {
		return rootStr[:len(rootStr)-4], true
	}

	return rootStr, false
}
