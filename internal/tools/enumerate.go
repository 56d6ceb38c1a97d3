package tools

import (
	"context"
	"errors"
	"strings"
	"time"

	"subcatalog/internal/config"
)

// Command is one program invocation. Args may reference {domain} and
// {output}. A non-zero Timeout bounds this command on top of the runner's.
type Command struct {
	Args    []string
	Timeout time.Duration
}

// Enumerator runs one subdomain discovery tool that writes one name per
// line to Output.
type Enumerator struct {
	Tool     string
	Commands []Command
	Output   string
	Runner   Runner
}

func (e *Enumerator) Name() string {
	return e.Tool
}

// Enumerate runs the tool's commands for domain and returns whatever the
// output file holds afterwards, even if a command failed or timed out.
// The output file is truncated once read.
func (e *Enumerator) Enumerate(ctx context.Context, domain string) ([]string, error) {
	var errs []error
	for _, command := range e.Commands {
		if len(command.Args) == 0 {
			continue
		}
		if err := e.run(ctx, command, domain); err != nil {
			errs = append(errs, err)
		}
	}

	lines, err := ReadLines(e.Output)
	if err != nil {
		errs = append(errs, err)
	}
	if err := Truncate(e.Output); err != nil {
		errs = append(errs, err)
	}
	return lines, errors.Join(errs...)
}

func (e *Enumerator) run(ctx context.Context, command Command, domain string) error {
	if command.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, command.Timeout)
		defer cancel()
	}

	args := make([]string, len(command.Args))
	for i, arg := range command.Args {
		arg = strings.ReplaceAll(arg, "{domain}", domain)
		args[i] = strings.ReplaceAll(arg, "{output}", e.Output)
	}
	_, err := e.Runner.Run(ctx, args[0], args[1:]...)
	return err
}

// DefaultEnumerators returns Sublist3r, subfinder and amass configured from
// cfg, all sharing runner.
func DefaultEnumerators(cfg *config.Config, runner Runner) []*Enumerator {
	return []*Enumerator{
		{
			Tool:     "sublist3r",
			Commands: []Command{{Args: []string{"python3", cfg.Sublist3rPath, "-d", "{domain}", "-o", "{output}"}}},
			Output:   cfg.TempFile("sublist3r_temp.txt"),
			Runner:   runner,
		},
		{
			Tool:     "subfinder",
			Commands: []Command{{Args: []string{cfg.SubfinderPath, "-d", "{domain}", "-o", "{output}"}}},
			Output:   cfg.TempFile("subfinder_temp.txt"),
			Runner:   runner,
		},
		{
			Tool: "amass",
			Commands: []Command{
				{Args: []string{cfg.AmassPath, "enum", "-d", "{domain}", "-dns-qps", "20"}, Timeout: 5 * time.Minute},
				{Args: []string{cfg.OamSubsPath, "-names", "-d", "{domain}", "-o", "{output}"}},
			},
			Output: cfg.TempFile("amass_temp.txt"),
			Runner: runner,
		},
	}
}
