// Package testutil provides test helpers that keep the package layering
// honest: the domain model and the pure planning packages must not reach
// into storage or infrastructure code.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// AssertNoTransitiveDependency runs `go list -deps` on pattern and fails the
// test if any listed package satisfies forbidden.
func AssertNoTransitiveDependency(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	viols, out, err := transitiveDependencyViolations(pattern, forbidden)
	if err != nil {
		t.Fatalf("go list failed: %v\n%s", err, string(out))
	}
	failIf(t, "forbidden transitive dependency", reason, viols)
}

// AssertNoDirectImports parses the non-test .go files in dir and fails if any
// import satisfies forbidden. Build tags are ignored.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	failIf(t, "forbidden direct imports", reason, viols)
}

// InternalImportForbidden matches any bioforge/internal package.
func InternalImportForbidden(path string) bool {
	return path == "bioforge/internal" || strings.HasPrefix(path, "bioforge/internal/")
}

// InfraImportForbidden matches the storage and blob backends plus the
// packages that select them.
func InfraImportForbidden(path string) bool {
	for _, p := range []string{"bioforge/internal/infra", "bioforge/internal/blob", "bioforge/internal/core", "bioforge/internal/export"} {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// StorageDriverForbidden matches database drivers and cloud SDKs.
func StorageDriverForbidden(path string) bool {
	switch {
	case path == "database/sql",
		strings.HasPrefix(path, "modernc.org/sqlite"),
		strings.HasPrefix(path, "github.com/jackc/pgx"),
		strings.HasPrefix(path, "github.com/aws/"):
		return true
	}
	return false
}

// AnyOf combines predicates.
func AnyOf(preds ...func(string) bool) func(string) bool {
	return func(path string) bool {
		for _, p := range preds {
			if p(path) {
				return true
			}
		}
		return false
	}
}

var goListDeps = func(pattern string) ([]byte, error) {
	cmd := exec.Command("go", "list", "-deps", pattern)
	return cmd.CombinedOutput()
}

func transitiveDependencyViolations(pattern string, forbidden func(path string) bool) ([]string, []byte, error) {
	out, err := goListDeps(pattern)
	if err != nil {
		return nil, out, err
	}
	var viols []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && forbidden(line) {
			viols = append(viols, line)
		}
	}
	return viols, out, nil
}

func directImportViolations(dir string, forbidden func(importPath string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range file.Imports {
			ip := strings.Trim(imp.Path.Value, `"`)
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	return viols, nil
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIf(t fatalLogger, kind, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("%s detected (%s):\n%s", kind, reason, strings.Join(viols, "\n"))
	}
}
