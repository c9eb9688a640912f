package debian

import (
	"context"
	"errors"
	"os/exec"

	errs "github.com/matzehuels/debgems/pkg/errors"
	"github.com/matzehuels/debgems/pkg/retry"
)

// Runner runs an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args and returns stdout and stderr combined.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

// CommandArchive queries the archive with rmadison and wnpp-check.
type CommandArchive struct {
	Runner        Runner
	Retry         retry.Policy
	Architectures string
}

// NewCommandArchive returns a CommandArchive using os/exec.
func NewCommandArchive(p retry.Policy) *CommandArchive {
	return &CommandArchive{Runner: ExecRunner{}, Retry: p, Architectures: DefaultArchitectures}
}

// Madison runs "rmadison -s suite -a arch pkg".
func (a *CommandArchive) Madison(ctx context.Context, pkg, suite string) (string, error) {
	if err := errs.ValidateDebianName(pkg); err != nil {
		return "", err
	}
	arch := a.Architectures
	if arch == "" {
		arch = DefaultArchitectures
	}
	var version string
	err := a.Retry.Do(ctx, func() error {
		out, err := a.run(ctx, "rmadison", "-s", suite, "-a", arch, pkg)
		if err != nil && out == "" {
			return err
		}
		v, perr := parseMadison(out)
		if errors.Is(perr, errTransient) {
			return retry.Retryable(errs.Wrap(errs.ErrCodeNetwork, perr, "rmadison %s", pkg))
		}
		if perr != nil && err != nil {
			return errs.Wrap(errs.ErrCodeCommandFailed, err, "rmadison %s: %s", pkg, out)
		}
		version = v
		return perr
	})
	return version, err
}

// WNPP runs "wnpp-check pkg". wnpp-check exits non-zero when it finds a
// bug, so the exit status is ignored whenever there is output.
func (a *CommandArchive) WNPP(ctx context.Context, pkg string) (*WNPPBug, error) {
	if err := errs.ValidateDebianName(pkg); err != nil {
		return nil, err
	}
	var bug *WNPPBug
	err := a.Retry.Do(ctx, func() error {
		out, err := a.run(ctx, "wnpp-check", pkg)
		if err != nil && out == "" && !isExitError(err) {
			return err
		}
		b, perr := parseWNPPCheck(out)
		if errors.Is(perr, errTransient) {
			return retry.Retryable(errs.Wrap(errs.ErrCodeNetwork, perr, "wnpp-check %s", pkg))
		}
		bug = b
		return perr
	})
	return bug, err
}

func (a *CommandArchive) run(ctx context.Context, name string, args ...string) (string, error) {
	r := a.Runner
	if r == nil {
		r = ExecRunner{}
	}
	out, err := r.Run(ctx, name, args...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", errs.Wrap(errs.ErrCodeCommandFailed, err, "%s is not installed (devscripts)", name)
		}
	}
	return out, err
}

func isExitError(err error) bool {
	var ee *exec.ExitError
	return errors.As(err, &ee)
}
