package process

import (
	"context"
	"errors"
	"os/exec"

	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/zerr"
)

// Probe runs the interpreter with the probe arguments and reports an error
// unless it exits zero within the probe timeout.
func Probe(ctx context.Context, cfg domain.CompilerConfig) error {
	interpreter := cfg.Interpreter
	if interpreter == "" {
		interpreter = domain.DefaultInterpreter
	}
	args := cfg.ProbeArgs
	if len(args) == 0 {
		args = []string{domain.DefaultProbeArg}
	}
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = domain.DefaultProbeTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := exec.CommandContext(ctx, interpreter, args...).Run(); err != nil {
		return errors.Join(
			zerr.With(zerr.Wrap(domain.ErrBackendUnavailable, "probe interpreter"), "interpreter", interpreter),
			err,
		)
	}
	return nil
}
