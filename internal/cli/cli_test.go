package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/rpattn/dataview/internal/app"
	"github.com/rpattn/dataview/internal/config"
)

const testConfig = `
log:
  level: warn
attributes:
  - key: ServiceTime
    name: Service Time
    entityType: Group
    fieldType: time
filters:
  - key: person.lastname
    kind: property
    entityType: Person
    options:
      property: LastName
listSources:
  colour:
    - key: r
      label: Red
    - key: b
      label: Blue
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	root := NewWithContext(&CommandContext{StdOut: &out, StdErr: &out})
	root.SetArgs(append(args, "--config", dir))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFieldTypesCommand(t *testing.T) {
	out, err := run(t, "fieldtypes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"KEY", "time", "keyvaluelist", "dayofweek", "colour", "binaryfile"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatCommand(t *testing.T) {
	out, err := run(t, "format", "colour", "b,r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Red,Blue\n" {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = run(t, "format", "time", "14:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "2:30 PM\n" {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, "format", "missing", "x"); err == nil || !strings.Contains(err.Error(), "unknown field type") {
		t.Fatalf("expected unknown field type error, got %v", err)
	}
	if _, err := run(t, "format", "text", "x", "--set", "novalue"); err == nil {
		t.Fatalf("expected malformed setting to fail")
	}
}

func TestFiltersCommand(t *testing.T) {
	out, err := run(t, "filters", "--entity-type", "Group")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "attribute.ServiceTime") || strings.Contains(out, "person.lastname") {
		t.Fatalf("unexpected group filters:\n%s", out)
	}

	out, err = run(t, "filters")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "person.lastname") || !strings.Contains(out, "Last Name") {
		t.Fatalf("unexpected filters:\n%s", out)
	}
}

func TestDescribeCommand(t *testing.T) {
	out, err := run(t, "describe", "person.lastname", "StartsWith|Sm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Last Name Starts With 'Sm'\n" {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, "describe", "person.lastname", "StartsWith|Sm", "-t", "Group"); err == nil {
		t.Fatalf("expected entity type mismatch to fail")
	}
	if _, err := run(t, "describe", "nope", "EqualTo|x"); err == nil || !strings.Contains(err.Error(), "unknown filter") {
		t.Fatalf("expected unknown filter error, got %v", err)
	}
}

func TestCompileCommand(t *testing.T) {
	out, err := run(t, "compile", "attribute.ServiceTime", "GreaterThan|9:30 AM", "-t", "Group", "--offset", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Service Time Greater Than '9:30 AM'", "$3", "$4", "09:30:00", "EXPR"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "$1 ") {
		t.Fatalf("placeholders must start after the offset:\n%s", out)
	}

	if _, err := run(t, "compile", "person.lastname", "EqualTo|x", "--offset", "-1"); err == nil {
		t.Fatalf("expected negative offset to fail")
	}
}

func TestBuildErrorsSurface(t *testing.T) {
	var out bytes.Buffer
	c := &CommandContext{
		StdOut: &out,
		StdErr: &out,
		Build: func(config.Config, app.Resolvers) (*app.Runtime, error) {
			return nil, errors.New("boom")
		},
	}
	root := NewWithContext(c)
	root.SetArgs([]string{"filters", "--config", t.TempDir()})
	if err := root.ExecuteContext(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected build error, got %v", err)
	}
}

func TestImportDryRun(t *testing.T) {
	file := filepath.Join(t.TempDir(), "groups.csv")
	if err := os.WriteFile(file, []byte("Service Time,Shoe Size\n9:00 AM,9\nnoon,10\n"), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	out, err := run(t, "import", file, "-t", "Group", "--dry-run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"VALID", "1", "Shoe Size", "ROW 3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	if _, err := run(t, "import", file, "--dry-run"); err == nil {
		t.Fatalf("expected missing entity type to fail")
	}
}
