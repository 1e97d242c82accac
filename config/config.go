package config

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Defaults applied when the corresponding attribute is not set.
const (
	DefaultFilename   = "cloudleakage.hcl"
	DefaultListen     = ":8080"
	DefaultDatabase   = "cloudleakage.db"
	DefaultArchiveDir = "archive"
)

// A Root is the root structure of the host configuration file.
type Root struct {
	Server *Server `hcl:"server,block"`
	Limits *Limits `hcl:"limits,block"`
}

// Default returns a configuration with all defaults applied, for running
// without a configuration file.
func Default() *Root {
	r := &Root{}
	r.applyDefaults()
	return r
}

// Server configures the http server and its backing services.
type Server struct {
	// Listen is the address the http server binds to.
	Listen string `hcl:"listen,optional"`

	// Database is the path to the bolt database file.
	Database string `hcl:"database,optional"`

	// ArchiveDir stores analyzed state documents on local disk. Mutually
	// exclusive with ArchiveBucket.
	ArchiveDir string `hcl:"archive_dir,optional"`

	// ArchiveBucket stores analyzed state documents in an S3 bucket.
	ArchiveBucket string `hcl:"archive_bucket,optional"`

	// EncryptionKey is the base64 encoded 32 byte key used to encrypt stored
	// account credentials.
	EncryptionKey string `hcl:"encryption_key,optional"`

	// Region is the default AWS region for accounts that do not set one.
	Region string `hcl:"region,optional"`
}

// Limits caps the complexity of state documents accepted for analysis. Zero
// values use the analyzer defaults.
type Limits struct {
	MaxBytes     int `hcl:"max_bytes,optional"`
	MaxResources int `hcl:"max_resources,optional"`
	MaxDepth     int `hcl:"max_depth,optional"`
}

func (r *Root) applyDefaults() {
	if r.Server == nil {
		r.Server = &Server{}
	}
	if r.Server.Listen == "" {
		r.Server.Listen = DefaultListen
	}
	if r.Server.Database == "" {
		r.Server.Database = DefaultDatabase
	}
	if r.Server.ArchiveDir == "" && r.Server.ArchiveBucket == "" {
		r.Server.ArchiveDir = DefaultArchiveDir
	}
	if r.Limits == nil {
		r.Limits = &Limits{}
	}
}

// Validate checks that the configuration can be used to start the server.
//
// All problems are returned, combined with multierr.
func (r *Root) Validate() error {
	srv := r.Server
	if srv == nil {
		srv = &Server{}
	}
	var err error
	if srv.EncryptionKey == "" {
		err = multierr.Append(err, errors.New("server.encryption_key is required"))
	}
	if srv.ArchiveDir != "" && srv.ArchiveBucket != "" {
		err = multierr.Append(err, errors.New("server.archive_dir and server.archive_bucket cannot both be set"))
	}
	return err
}
