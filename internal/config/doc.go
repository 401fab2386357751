// Package config holds the crawl settings built from command line flags and
// the optional YAML configuration file.
package config
