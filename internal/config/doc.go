// Package config holds the runtime configuration for proctorscan.
//
// Configuration comes from three layers, lowest priority first:
//  1. Built-in defaults (NewConfig)
//  2. An optional .proctorscan YAML file with heuristic threshold
//     overrides (LoadConfigFile / FindConfigFile)
//  3. CLI flags, applied by the cmd package
//
// The Config struct is passed through the application via dependency
// injection rather than global state. Validate() is called once after
// CLI parsing, before any analysis begins.
package config
