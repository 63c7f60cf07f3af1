package config

// Version is the Tally binary version.
// Set at build time via: -ldflags "-X github.com/tallyhq/tally/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
