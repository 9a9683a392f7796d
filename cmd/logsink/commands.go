package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/components/logging"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/consts"
)

const (
	demoCmdShort = "write one sample message per level to a new sink"
	demoCmdLong  = `Provision a single sink and write one message at every level
	(DEBUG, INFO, WARNING, ERROR, CRITICAL). Messages below --level are dropped;
	the rest go to the log file and to stderr.`
	demoCmdExample = `# write the samples to ./logs/app.log with the default INFO threshold
	logsink demo --file ./logs/app.log

	# keep two 100 byte files and show every level
	logsink demo --file ./logs/app.log --level debug --max-size 100 --backups 2`

	runCmdShort = "provision the sinks of a config file and wait for a signal"
	runCmdLong  = `Load the config file, provision every sink under logging.sinks,
	start the optional metrics endpoint and block until SIGINT or SIGTERM.
	LOGSINK_LEVEL, LOGSINK_LOG_DIR and LOGSINK_METRICS_ADDRESS override the file.`
	runCmdExample = `logsink run --config config.yaml --env production`

	fileFlagName    = "file"
	nameFlagName    = "name"
	levelFlagName   = "level"
	maxSizeFlagName = "max-size"
	backupsFlagName = "backups"
	layoutFlagName  = "layout"
	configFlagName  = "config"
	envFlagName     = "env"
)

var errMissingFile = errors.New("--" + fileFlagName + " is required")

type demoFlags struct {
	name    string
	file    string
	level   string
	maxSize int64
	backups int
	layout  string
}

func (f *demoFlags) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, nameFlagName, "my_logger", "sink name written in every line")
	flags.StringVar(&f.file, fileFlagName, "", "path of the active log file")
	flags.StringVar(&f.level, levelFlagName, logging.INFO.String(), "minimum level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	flags.Int64Var(&f.maxSize, maxSizeFlagName, consts.DEFAULT_MAX_FILE_SIZE_BYTES, "rotate once the file would exceed this many bytes")
	flags.IntVar(&f.backups, backupsFlagName, consts.DEFAULT_BACKUP_COUNT, "number of rotated files to keep")
	flags.StringVar(&f.layout, layoutFlagName, consts.LAYOUT_NUMBERED, "backup naming: numbered or timestamped")
}

func demoCmd() *cobra.Command {
	flags := &demoFlags{}
	cmd := &cobra.Command{
		Use:     "demo",
		Short:   heredoc.Doc(demoCmdShort),
		Long:    heredoc.Doc(demoCmdLong),
		Example: heredoc.Doc(demoCmdExample),

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.file == "" {
				return errMissingFile
			}
			level, err := logging.ParseLevel(flags.level)
			if err != nil {
				return err
			}

			provisioner := logging.NewProvisioner(nil)
			defer provisioner.Close()

			sink, err := provisioner.Provision(flags.name, flags.file,
				logging.WithLevel(level),
				logging.WithMaxFileSize(flags.maxSize),
				logging.WithBackupCount(flags.backups),
				logging.WithLayout(flags.layout),
				logging.WithConsoleWriter(cmd.ErrOrStderr()),
			)
			if err != nil {
				return err
			}
			return writeSamples(sink)
		},
	}

	flags.addFlags(cmd)
	return cmd
}

func writeSamples(sink *logging.LogSink) error {
	var err error
	for _, level := range logging.AllLevels {
		err = multierr.Append(err, sink.Log(level, fmt.Sprintf("this is a %s message", level)))
	}
	return err
}

type runFlags struct {
	configPath string
	env        string
}

func runCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:     "run",
		Short:   heredoc.Doc(runCmdShort),
		Long:    heredoc.Doc(runCmdLong),
		Example: heredoc.Doc(runCmdExample),

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app := logsink.NewApp(flags.env, flags.configPath)
			return app.RunWithContext(ctx)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, configFlagName, consts.DEFAULT_CONFIG_PATH, "config file (yaml or json)")
	cmd.Flags().StringVar(&flags.env, envFlagName, consts.ENV_DEVELOPMENT, "running environment")
	return cmd
}
