package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ubuntu/yowsl"
)

func newRegisterCommand(a *app) *cobra.Command {
	var src, dest string

	cmd := &cobra.Command{
		Use:   "register <name> -s <source> -d <destination>",
		Short: "Registers a WSL distro",
		Long: `Registers a WSL distro from a .tar.gz file that contains a root directory.

WSL installs the distro next to the executable that registers it. When the
destination is not the directory of yowsl itself, yowsl hard-links itself
into the destination and runs the registration from there.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			source, destination, err := registrationPaths(src, dest)
			if err != nil {
				return err
			}

			exe, err := executable()
			if err != nil {
				return err
			}

			if !samePath(filepath.Dir(exe), destination) {
				a.logger.Info("Relaunching from the destination", "destination", destination)
				return relaunchFrom(cmd, exe, destination)
			}

			api, err := a.api(cmd.Context())
			if err != nil {
				return err
			}

			if err := api.RegisterDistro(name, source); err != nil {
				return err
			}

			a.logger.Info("Distro registered", "distro", name, "destination", destination)
			return nil
		},
	}

	cmd.Flags().StringVarP(&src, "src", "s", "", "A .tar.gz file that contains a root directory")
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "A directory to register the WSL distro in")
	_ = cmd.MarkFlagRequired("src")
	_ = cmd.MarkFlagRequired("dest")

	return cmd
}

func newUnregisterCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unregister <name>",
		Short: "Unregisters a WSL distro",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.api(cmd.Context())
			if err != nil {
				return err
			}

			if err := api.UnregisterDistro(args[0]); err != nil {
				return err
			}

			a.logger.Info("Distro unregistered", "distro", args[0])
			return nil
		},
	}
}

func newGetConfigurationCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get-configuration <name>",
		Short: "Gets the configuration of a WSL distro",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.api(cmd.Context())
			if err != nil {
				return err
			}

			c, err := api.DistroConfiguration(args[0])
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), c.String())
			return nil
		},
	}
}

func newSetConfigurationCommand(a *app) *cobra.Command {
	var (
		uid      string
		flags    string
		fromFile string
	)

	cmd := &cobra.Command{
		Use:   "set-configuration <name> [-u <default_uid>] [-f <flags>] [--from-file <path>]",
		Short: "Sets the configuration of a WSL distro",
		Long: `Sets the configuration of a WSL distro.

Flags are 3 binary digits: 001 enables interop, 010 appends the Windows PATH
and 100 enables drive mounting. Settings read with --from-file are applied
first, then the ones given on the command line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			var change configurationChange

			if fromFile != "" {
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return err
				}
				fc, err := yowsl.ParseConfiguration(data)
				if err != nil {
					return err
				}
				if !strings.EqualFold(fc.Name, name) {
					return fmt.Errorf("%s describes distro %q, not %q", fromFile, fc.Name, name)
				}
				change.uid = &fc.DefaultUID
				change.flags = &fc.Flags
			}

			if cmd.Flags().Changed("default-uid") {
				u, err := parseUID(uid)
				if err != nil {
					return err
				}
				change.uid = &u
			}

			if cmd.Flags().Changed("flags") {
				f, err := yowsl.ParseDistroFlags(flags)
				if err != nil {
					return fmt.Errorf("invalid flags %q: %v", flags, err)
				}
				change.flags = &f
			}

			api, err := a.api(cmd.Context())
			if err != nil {
				return err
			}

			c, err := api.DistroConfiguration(name)
			if err != nil {
				return err
			}

			c = change.apply(c)
			if err := api.ConfigureDistro(c); err != nil {
				return err
			}

			a.logger.Info("Distro configured", "distro", name, "uid", c.DefaultUID, "flags", c.Flags.Binary())
			return nil
		},
	}

	cmd.Flags().StringVarP(&uid, "default-uid", "u", "", "The default Linux user ID (number) for this WSL distro")
	cmd.Flags().StringVarP(&flags, "flags", "f", "", "Flags (3 binary digits) for this WSL distro. 001: ENABLE_INTEROP, 010: APPEND_NT_PATH, 100: ENABLE_DRIVE_MOUNTING")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "A TOML file as printed by get-configuration")

	return cmd
}

func newLaunchCommand(a *app) *cobra.Command {
	var (
		command string
		useCWD  bool
	)

	cmd := &cobra.Command{
		Use:   "launch <name> [-c <command>] [-u]",
		Short: "Launches a WSL process",
		Long: `Launches a WSL process attached to the current console and exits with its exit code.
If no command is supplied, the default shell is executed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.api(cmd.Context())
			if err != nil {
				return err
			}

			code, err := api.Launch(args[0], command, useCWD)
			if err != nil {
				return err
			}

			a.logger.Debug("Process exited", "distro", args[0], "exitCode", code)
			if code != 0 {
				return &ExitError{Code: int(code)}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&command, "command", "c", "", "Command to execute. If no command is supplied, the default shell is executed")
	cmd.Flags().BoolVarP(&useCWD, "use-cwd", "u", false, "Uses the current working directory as a directory to start")

	return cmd
}

// configurationChange lists the settings to override. Nil means unchanged.
type configurationChange struct {
	uid   *uint32
	flags *yowsl.DistroFlags
}

func (ch configurationChange) apply(c yowsl.Configuration) yowsl.Configuration {
	if ch.uid != nil {
		c.DefaultUID = *ch.uid
	}
	if ch.flags != nil {
		version := c.Flags.UndocumentedWSLVersion
		c.Flags = *ch.flags
		c.Flags.UndocumentedWSLVersion = version
	}
	return c
}

func parseUID(s string) (uint32, error) {
	u, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid default UID %q: a 32-bit unsigned integer is expected", s)
	}
	return uint32(u), nil
}

// registrationPaths checks that the source is a file and the destination a
// directory, and returns their canonical forms.
func registrationPaths(src, dest string) (source, destination string, err error) {
	if fi, err := os.Stat(src); err != nil || !fi.Mode().IsRegular() {
		return "", "", fmt.Errorf("%q does not exist or is not a file", src)
	}
	if fi, err := os.Stat(dest); err != nil || !fi.IsDir() {
		return "", "", fmt.Errorf("%q does not exist or is not a directory", dest)
	}

	if source, err = canonical(src); err != nil {
		return "", "", err
	}
	if destination, err = canonical(dest); err != nil {
		return "", "", err
	}
	return source, destination, nil
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("could not locate yowsl: %v", err)
	}
	return canonical(exe)
}

// samePath reports whether a and b name the same file or directory.
func samePath(a, b string) bool {
	fa, err := os.Stat(a)
	if err != nil {
		return false
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

// relaunchFrom hard-links exe into dir and runs the same command line from
// there. The exit code of the relaunched process is propagated.
func relaunchFrom(cmd *cobra.Command, exe, dir string) error {
	link := filepath.Join(dir, filepath.Base(exe))

	if err := os.Link(exe, link); err != nil && !samePath(exe, link) {
		return fmt.Errorf("could not create a hard link to %q in %q: %v", exe, dir, err)
	}

	//nolint:gosec // Running ourselves again with the arguments we were given.
	c := exec.CommandContext(cmd.Context(), link, os.Args[1:]...)
	c.Stdin = os.Stdin
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()

	err := c.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The relaunched process already reported its error.
		return &ExitError{Code: exitErr.ExitCode()}
	}
	return err
}
