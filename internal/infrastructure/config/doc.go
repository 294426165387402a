// Package config handles loading and validating ets2ha configuration.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Overriding with environment variables
//   - Validation of all fields in one pass
//   - Default value handling
//
// The environment variables DEBUG and GADDRSTYLE are accepted as aliases
// for ETS2HA_LOG_LEVEL and ETS2HA_ADDRESS_STYLE so existing ets_to_hass
// invocations keep working.
//
// Security Considerations:
//   - MQTT credentials should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("ets2ha.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Conversion.AddressStyle)
package config
