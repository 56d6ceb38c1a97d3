package tools

import (
	"context"
	"errors"

	"subcatalog/internal/config"
)

// MassDNS resolves names with massdns in simple output mode
// ("name. TYPE value" per line).
type MassDNS struct {
	Path       string
	Resolvers  string
	InputFile  string
	OutputFile string
	Runner     Runner
}

func NewMassDNS(cfg *config.Config, runner Runner) *MassDNS {
	return &MassDNS{
		Path:       cfg.MassDNSPath,
		Resolvers:  cfg.Resolvers,
		InputFile:  cfg.TempFile("massdns_input_temp.txt"),
		OutputFile: cfg.TempFile("massdns_output_temp.txt"),
		Runner:     runner,
	}
}

// Resolve writes names to the input batch, runs massdns and returns the raw
// answer lines. Both scratch files are emptied afterwards. Lines written
// before a failure or timeout are still returned alongside the error.
func (m *MassDNS) Resolve(ctx context.Context, names []string) ([]string, error) {
	if err := WriteLines(m.InputFile, names); err != nil {
		return nil, err
	}
	if err := Truncate(m.OutputFile); err != nil {
		return nil, err
	}

	_, runErr := m.Runner.Run(ctx, m.Path, "-r", m.Resolvers, "-o", "S", "-w", m.OutputFile, m.InputFile)

	lines, readErr := ReadLines(m.OutputFile)
	cleanErr := errors.Join(Truncate(m.OutputFile), Truncate(m.InputFile))
	return lines, errors.Join(runErr, readErr, cleanErr)
}
