package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws/external"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudleakage/cloudleakage/account"
	"github.com/cloudleakage/cloudleakage/analysis"
	"github.com/cloudleakage/cloudleakage/api"
	"github.com/cloudleakage/cloudleakage/api/httpapi"
	"github.com/cloudleakage/cloudleakage/archive"
	"github.com/cloudleakage/cloudleakage/archive/disk"
	s3archive "github.com/cloudleakage/cloudleakage/archive/s3"
	"github.com/cloudleakage/cloudleakage/config"
	"github.com/cloudleakage/cloudleakage/provider/aws"
	"github.com/cloudleakage/cloudleakage/storage"
	"github.com/cloudleakage/cloudleakage/storage/kvbackend"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var cmd = &cobra.Command{
	Use:           "cloudleakage-server",
	SilenceErrors: true,
	SilenceUsage:  true,
}

var startCommand = &cobra.Command{
	Use:   "start",
	Short: "Start cloudleakage API server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)

		if addr, _ := cmd.Flags().GetString("address"); addr != "" {
			cfg.Server.Listen = addr
		} else if addr := os.Getenv("CLOUDLEAKAGE_ADDR"); addr != "" {
			cfg.Server.Listen = addr
		}
		if db, _ := cmd.Flags().GetString("database"); db != "" {
			cfg.Server.Database = db
		}
		if cfg.Server.EncryptionKey == "" {
			cfg.Server.EncryptionKey = os.Getenv("CLOUDLEAKAGE_ENCRYPTION_KEY")
		}

		if err := cfg.Validate(); err != nil {
			for _, e := range multierr.Errors(err) {
				fmt.Fprintln(os.Stderr, e)
			}
			os.Exit(2)
		}

		var logger *zap.Logger
		if isatty.IsTerminal(os.Stdout.Fd()) {
			l, err := zap.NewDevelopment()
			if err != nil {
				panic(err)
			}
			logger = l
		} else {
			l, err := zap.NewProduction()
			if err != nil {
				panic(err)
			}
			logger = l
			defer func() {
				_ = logger.Sync()
			}()
		}

		backend, err := kvbackend.NewBoltWithFile(cfg.Server.Database)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer func() {
			_ = backend.Close()
		}()

		cipher, err := account.NewCipher(cfg.Server.EncryptionKey)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		var arch archive.Storage
		if cfg.Server.ArchiveBucket != "" {
			awscfg, err := external.LoadDefaultAWSConfig()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			arch = &s3archive.Storage{
				Bucket: cfg.Server.ArchiveBucket,
				Client: s3.New(awscfg),
			}
		} else {
			arch = &disk.Storage{Dir: cfg.Server.ArchiveDir}
		}

		srv := &api.Server{
			Logger: logger.Named("server"),
			Analyzer: &analysis.Analyzer{
				Logger: logger.Named("analysis"),
				Limits: analysis.Limits{
					MaxBytes:     cfg.Limits.MaxBytes,
					MaxResources: cfg.Limits.MaxResources,
					MaxDepth:     cfg.Limits.MaxDepth,
				},
			},
			AccountStore: &account.Store{Backend: backend},
			Cipher:       cipher,
			Provider:     &aws.Connector{DefaultRegion: cfg.Server.Region},
			Archive:      arch,
			Storage:      &storage.KV{Backend: backend},
		}

		server := &httpapi.Server{
			API:    srv,
			Logger: logger.Named("http_api"),
		}

		logger.Info("Starting server", zap.String("address", cfg.Server.Listen))

		if err := http.ListenAndServe(cfg.Server.Listen, server); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

// loadConfig loads the configuration file named by the flag, or the nearest
// cloudleakage.hcl when the flag is not set. Built in defaults are used when
// no file exists.
func loadConfig(cmd *cobra.Command) *config.Root {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		panic(err)
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		path, err = config.FindFile(wd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if path == "" {
		return config.Default()
	}

	loader := &config.Loader{}
	cfg, diags := loader.Load(path)
	if diags.HasErrors() {
		loader.WriteDiagnostics(os.Stderr, diags)
		os.Exit(1)
	}
	return cfg
}

func main() {
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	startCommand.Flags().String("config", "", "Configuration file. Defaults to the nearest cloudleakage.hcl")
	startCommand.Flags().String("address", "", "Address to listen on, overrides the configuration. Env var: CLOUDLEAKAGE_ADDR")
	startCommand.Flags().String("database", "", "Bolt database file, overrides the configuration")

	cmd.AddCommand(startCommand)
}
