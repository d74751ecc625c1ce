package main

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/junioryono/inject"
	"github.com/junioryono/inject/manifest"
)

const (
	envManifest = "INJECT_MANIFEST"
	envLogLevel = "INJECT_LOG_LEVEL"
)

var errNoManifest = errors.New("no manifest given: pass --manifest or set " + envManifest)

type cli struct {
	rootCmd *cobra.Command
	out     io.Writer
	log     *logrus.Logger

	envFile      string
	manifestPath string
	logLevel     string

	manifest  *manifest.Manifest
	container *inject.Container
	tracer    *tracer
}

// Exec runs the command line. The container is closed even when a command fails.
func (c *cli) Exec() error {
	defer c.close()
	return c.rootCmd.Execute()
}

func newCli(out, errOut io.Writer) *cli {
	c := &cli{out: out, log: logrus.New()}
	c.log.SetOutput(errOut)

	rootCmd := &cobra.Command{
		Use:               "injectctl",
		Short:             "injectctl inspects binding manifests",
		SilenceUsage:      true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return c.open() },
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.envFile, "env-file", ".env", "environment file to load if present")
	flags.StringVar(&c.manifestPath, "manifest", "", "binding manifest (default $"+envManifest+")")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (default $"+envLogLevel+" or warning)")

	rootCmd.AddCommand(makeBindingsCmd(c))
	rootCmd.AddCommand(makeExplainCmd(c))

	c.rootCmd = rootCmd
	return c
}

// open loads the environment, the manifest and builds the container.
func (c *cli) open() error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return pkgerrors.Wrapf(err, "load %s", c.envFile)
		}
	}

	if c.logLevel == "" {
		c.logLevel = os.Getenv(envLogLevel)
	}
	if c.logLevel == "" {
		c.logLevel = logrus.WarnLevel.String()
	}
	level, err := logrus.ParseLevel(c.logLevel)
	if err != nil {
		return err
	}
	c.log.SetLevel(level)

	if c.manifestPath == "" {
		c.manifestPath = os.Getenv(envManifest)
	}
	if c.manifestPath == "" {
		return errNoManifest
	}

	c.manifest, err = manifest.LoadFile(c.manifestPath, manifest.WithLogger(c.log))
	if err != nil {
		return err
	}

	c.tracer = newTracer()
	c.container, err = inject.New(c.tracer.wrap(c.manifest.Bindings()), inject.WithLogger(c.log))
	return err
}

func (c *cli) close() error {
	if c.container == nil {
		return nil
	}
	return c.container.Close()
}
