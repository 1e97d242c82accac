// Package config provides host configuration for the cloudleakage server.
//
// Configuration is loaded from an hcl file, typically cloudleakage.hcl:
//
//  server {
//    listen         = ":8080"
//    database       = "cloudleakage.db"
//    archive_dir    = "archive"
//    encryption_key = "<base64 encoded 32 byte key>"
//    region         = "eu-west-1"
//  }
//
//  limits {
//    max_bytes     = 33554432
//    max_resources = 10000
//    max_depth     = 64
//  }
//
// Every attribute is optional except the encryption key, which must be set
// before accounts can be stored. Omitted limits fall back to the analyzer's
// built in defaults.
package config
