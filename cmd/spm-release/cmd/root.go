package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fluxcd/pkg/masktoken"
	"github.com/spf13/cobra"

	"github.com/oshokin/spm-release/internal/actions"
	"github.com/oshokin/spm-release/internal/config"
	"github.com/oshokin/spm-release/internal/platformspec"
	"github.com/oshokin/spm-release/internal/publisher"
	"github.com/oshokin/spm-release/internal/service/release"
	"github.com/oshokin/spm-release/internal/version"
)

// rootCmd packages platform artifacts and attaches them to a release.
var rootCmd = &cobra.Command{
	Use:   "spm-release",
	Short: "Package platform artifacts, upload them to a GitHub release and publish spm.json",
	Long: `spm-release archives the files listed per platform, uploads one archive per
platform to the release of the current tag and publishes an spm.json manifest
describing them. Inputs come from the configuration file, INPUT_* and GITHUB_*
environment variables and flags, in increasing priority.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		pub, err := newPublisher(cfg)
		if err != nil {
			return err
		}

		options := &release.Options{
			Config:    cfg,
			Publisher: pub,
			Resolver:  platformspec.GlobResolver{Root: cfg.WorkingDirectory},
			Outputs:   actions.FromEnv(os.LookupEnv, cmd.OutOrStdout()),
		}

		_, err = release.Run(ctx, options)

		return mask(err, cfg.Token)
	},
}

// maskedError carries a message with the token redacted.
type maskedError struct {
	err     error
	message string
}

func (e *maskedError) Error() string {
	return e.message
}

func (e *maskedError) Unwrap() error {
	return e.err
}

// mask redacts token from the message of err.
func mask(err error, token string) error {
	if err == nil || token == "" {
		return err
	}

	message, maskErr := masktoken.MaskTokenFromString(err.Error(), token)
	if maskErr != nil || message == err.Error() {
		return err
	}

	return &maskedError{err: err, message: message}
}

// newPublisher stores assets locally in dry-run mode and on GitHub otherwise.
func newPublisher(cfg *config.Config) (publisher.Publisher, error) { //nolint:ireturn // Selects an implementation.
	if cfg.DryRunDir != "" {
		return publisher.NewDirectory(cfg.DryRunDir), nil
	}

	gh, err := publisher.NewGitHub(cfg.Token, publisher.WithEnterpriseURLs(cfg.APIURL, cfg.UploadURL))
	if err != nil {
		return nil, err
	}

	return gh, nil
}

// Execute runs the spm-release CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		report(err)
		os.Exit(1)
	}
}

// report prints err once, as an annotation when running inside a runner.
func report(err error) {
	message := err.Error()

	if actions.InRunner(os.LookupEnv) {
		actions.Fail(os.Stdout, message)
		return
	}

	_, _ = os.Stderr.WriteString("Error: " + message + "\n")
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Flags shared by the release run and the config subcommand.
	bindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(configCmd)
}
