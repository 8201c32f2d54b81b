// Package config loads YAML configuration for backends and the standard
// middleware pipeline. Secrets never live in the YAML file; settings name
// the environment variables that hold them, and LoadEnv can populate those
// variables from a .env file during development.
package config
