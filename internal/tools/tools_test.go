package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"subcatalog/internal/config"
)

// fakeRunner records invocations and writes canned output to the file that
// follows the flag named by outFlag.
type fakeRunner struct {
	calls   [][]string
	outFlag string
	output  string
	err     error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	for i, arg := range args {
		if arg == f.outFlag && i+1 < len(args) && f.output != "" {
			if err := os.WriteFile(args[i+1], []byte(f.output), 0o644); err != nil {
				return nil, err
			}
		}
	}
	return nil, f.err
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		TempDir:       t.TempDir(),
		MassDNSPath:   "massdns",
		Resolvers:     "resolvers.txt",
		Sublist3rPath: "sublist3r.py",
		SubfinderPath: "subfinder",
		AmassPath:     "amass",
		OamSubsPath:   "oam_subs",
	}
}

func TestMassDNSResolve(t *testing.T) {
	cfg := testConfig(t)
	runner := &fakeRunner{outFlag: "-w", output: "a.example.com. A 8.8.8.8\n\nb.example.com. CNAME c.example.net.\n"}
	m := NewMassDNS(cfg, runner)

	lines, err := m.Resolve(context.Background(), []string{"a.example.com", "b.example.com"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	want := []string{"a.example.com. A 8.8.8.8", "b.example.com. CNAME c.example.net."}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}

	call := strings.Join(runner.calls[0], " ")
	if !strings.HasPrefix(call, "massdns -r resolvers.txt -o S -w ") {
		t.Errorf("unexpected invocation %q", call)
	}
	for _, path := range []string{m.InputFile, m.OutputFile} {
		if info, err := os.Stat(path); err != nil || info.Size() != 0 {
			t.Errorf("scratch file %s not emptied", path)
		}
	}
}

func TestMassDNSResolveReturnsPartialOutputOnTimeout(t *testing.T) {
	cfg := testConfig(t)
	runner := &fakeRunner{outFlag: "-w", output: "a.example.com. A 8.8.8.8\n", err: ErrTimeout}
	lines, err := NewMassDNS(cfg, runner).Resolve(context.Background(), []string{"a.example.com"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %v", lines)
	}
}

func TestDefaultEnumerators(t *testing.T) {
	cfg := testConfig(t)
	runner := &fakeRunner{outFlag: "-o", output: "www.example.com\napi.example.com\n"}

	enumerators := DefaultEnumerators(cfg, runner)
	var names []string
	for _, e := range enumerators {
		names = append(names, e.Name())
	}
	if !reflect.DeepEqual(names, []string{"sublist3r", "subfinder", "amass"}) {
		t.Fatalf("enumerators = %v", names)
	}

	amass := enumerators[2]
	lines, err := amass.Enumerate(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Enumerate error: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"www.example.com", "api.example.com"}) {
		t.Fatalf("lines = %v", lines)
	}
	if got := strings.Join(runner.calls[0], " "); got != "amass enum -d example.com -dns-qps 20" {
		t.Errorf("first call = %q", got)
	}
	if got := runner.calls[1]; got[0] != "oam_subs" || got[len(got)-1] != filepath.Join(cfg.TempDir, "amass_temp.txt") {
		t.Errorf("second call = %v", got)
	}

	again, _ := amass.Enumerate(context.Background(), "example.com")
	if len(again) != 2 {
		t.Errorf("output should be rewritten per run, got %v", again)
	}
}

func TestExecRunnerTimeout(t *testing.T) {
	if _, err := os.Stat("/bin/sleep"); err != nil {
		t.Skip("sleep not available")
	}
	_, err := ExecRunner{Timeout: 50 * time.Millisecond}.Run(context.Background(), "/bin/sleep", "5")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestReadLinesMissingFile(t *testing.T) {
	lines, err := ReadLines(filepath.Join(t.TempDir(), "nope.txt"))
	if err != nil || lines != nil {
		t.Fatalf("ReadLines(missing) = %v, %v", lines, err)
	}
}
