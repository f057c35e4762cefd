// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// Every key can be set through an environment variable named after its path
// with the RECITE_ prefix, e.g. sweep.batch_size is RECITE_SWEEP_BATCH_SIZE.
package config
