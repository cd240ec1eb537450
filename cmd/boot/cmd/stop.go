package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

// ErrProcessNotFound is returned when no process matches the name.
var ErrProcessNotFound = errors.New("no matching process")

// FindProcess returns the pid of the oldest process whose command line
// matches name.
var FindProcess = func(name string) (int, error) {
	out, err := exec.Command("pgrep", "-o", "-f", name).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return 0, fmt.Errorf("%w: %s", ErrProcessNotFound, name)
		}
		return 0, fmt.Errorf("pgrep failed: %w", err)
	}
	return ParsePID(string(out))
}

// SignalProcess sends SIGINT to pid.
var SignalProcess = func(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Signal(syscall.SIGINT)
}

// ParsePID reads the first pid from pgrep output.
func ParsePID(out string) (int, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, ErrProcessNotFound
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("invalid pid %q: %w", fields[0], err)
	}
	return pid, nil
}

// NewStopCommand creates the stop command
func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <name>",
		Short: "Stop a running application",
		Long:  `Stop sends SIGINT to the oldest process whose command line matches name, which triggers a graceful shutdown.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := FindProcess(args[0])
			if err != nil {
				return err
			}
			if err := SignalProcess(pid); err != nil {
				return fmt.Errorf("failed to signal %d: %w", pid, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent SIGINT to %s (pid %d)\n", args[0], pid)
			return nil
		},
	}
}
