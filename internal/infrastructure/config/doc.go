// Package config handles loading and validating Configurizer configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// The machines section is the declarative machine registry: one entry per
// machine instance, naming its kind and kind-specific parameters. It is
// read once at startup; the running system never mutates it.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
