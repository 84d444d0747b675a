//go:build stave

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
)

// Default target when running `stave` with no arguments.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"i": Install,
	"c": Clean,
	"s": Smoke,
}

const (
	binaryName = "sweepsum"
	mainPkg    = "./cmd/sweepsum"
	binDir     = "bin"
)

// All runs the complete build pipeline.
func All() error {
	st.Deps(Lint, Test)
	st.Deps(Build, Smoke)
	return nil
}

// Build compiles the sweepsum binary.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating bin directory: %w", err)
	}
	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", binaryPath(), mainPkg)
}

// Install builds and installs sweepsum to the user's GOBIN or /usr/local/bin.
func Install() error {
	st.Deps(Build)

	bin, err := installDir()
	if err != nil {
		return err
	}
	dst := withExe(filepath.Join(bin, binaryName))

	if st.Verbose() {
		fmt.Printf("Installing %s to %s\n", binaryPath(), dst)
	}
	return sh.Copy(dst, binaryPath())
}

// Uninstall removes the installed sweepsum binary.
func Uninstall() error {
	bin, err := installDir()
	if err != nil {
		return err
	}
	target := withExe(filepath.Join(bin, binaryName))

	if _, err := os.Stat(target); os.IsNotExist(err) {
		if st.Verbose() {
			fmt.Printf("Binary not found at %s, nothing to uninstall\n", target)
		}
		return nil
	}

	if st.Verbose() {
		fmt.Printf("Removing %s\n", target)
	}
	return os.Remove(target)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// Smoke scans a scratch tree twice with the built binary and expects the
// manifests to compare equal, then changes one file and expects exit code 1.
func Smoke() error {
	st.Deps(Build)

	dir, err := os.MkdirTemp("", "sweepsum-smoke-")
	if err != nil {
		return fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	tree := filepath.Join(dir, "tree")
	if err := os.MkdirAll(filepath.Join(tree, "nested"), 0o755); err != nil {
		return err
	}
	files := map[string]string{
		"a.txt":        "alpha\n",
		"nested/b.txt": "bravo\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(tree, name), []byte(body), 0o644); err != nil {
			return err
		}
	}

	bin := binaryPath()
	first := filepath.Join(dir, "first.sum")
	second := filepath.Join(dir, "second.sum")
	third := filepath.Join(dir, "third.sum")

	if err := sh.Run(bin, "scan", "-q", tree, "-o", first); err != nil {
		return fmt.Errorf("first scan: %w", err)
	}
	if err := sh.Run(bin, "scan", "-q", tree, "-o", second); err != nil {
		return fmt.Errorf("second scan: %w", err)
	}
	if err := sh.Run(bin, "compare", "-q", "--no-history", first, second); err != nil {
		return fmt.Errorf("unchanged tree reported differences: %w", err)
	}

	if err := os.WriteFile(filepath.Join(tree, "a.txt"), []byte("changed\n"), 0o644); err != nil {
		return err
	}
	if err := sh.Run(bin, "scan", "-q", tree, "-o", third); err != nil {
		return fmt.Errorf("third scan: %w", err)
	}
	var exitErr *exec.ExitError
	err = exec.Command(bin, "compare", "-q", "--no-history", first, third).Run()
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		return errors.New("modified tree was not reported with exit code 1")
	}

	if st.Verbose() {
		fmt.Println("smoke test passed")
	}
	return nil
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if st.Verbose() {
		fmt.Printf("Removing %s/\n", binDir)
	}
	return sh.Rm(binDir + "/")
}

// Fmt formats all Go code.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("running gofmt: %w", err)
	}
	return sh.Run("goimports", "-w", ".")
}

// Tidy runs go mod tidy.
func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}

func binaryPath() string {
	return withExe(filepath.Join(binDir, binaryName))
}

func withExe(path string) string {
	if runtime.GOOS == "windows" {
		return path + ".exe"
	}
	return path
}

// installDir returns GOBIN, GOPATH/bin or /usr/local/bin, in that order.
func installDir() (string, error) {
	gocmd := st.GoCmd()
	bin, err := sh.Output(gocmd, "env", "GOBIN")
	if err != nil {
		return "", fmt.Errorf("determining GOBIN: %w", err)
	}
	if bin != "" {
		return bin, nil
	}

	gopath, err := sh.Output(gocmd, "env", "GOPATH")
	if err != nil {
		return "", fmt.Errorf("determining GOPATH: %w", err)
	}
	if gopath != "" {
		return filepath.Join(gopath, "bin"), nil
	}
	return "/usr/local/bin", nil
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version := "dev"
	commit := "unknown"
	date := time.Now().Format(time.RFC3339)

	if v, err := sh.Output("git", "describe", "--tags", "--always"); err == nil && v != "" {
		version = strings.TrimSpace(v)
	}

	if c, err := sh.Output("git", "rev-parse", "--short", "HEAD"); err == nil && c != "" {
		commit = strings.TrimSpace(c)
	}

	pkg := "main"
	return fmt.Sprintf(
		"-X %s.version=%s -X %s.commit=%s -X %s.date=%s",
		pkg, version, pkg, commit, pkg, date,
	)
}
