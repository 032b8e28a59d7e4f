// Package config handles loading and validating pairing service configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (PAIRING_*)
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Cache, broker and SMTP passwords should be set via environment variables
//   - The config file should have restricted permissions (0600)
//   - The JWT secret has no default and must be at least 32 characters
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Cache.Address)
package config
