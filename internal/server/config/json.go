package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/duochat/internal/flagx"
	"github.com/dmitrijs2005/duochat/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for the token lifetime, which allows
// parsing both string values such as "168h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr          string         `json:"endpoint_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	ClientOrigin          string         `json:"client_origin"`
	Environment           string         `json:"environment"`
	MaxImageBytes         int64          `json:"max_image_bytes"`
	MaxProfilePicBytes    int64          `json:"max_profile_pic_bytes"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
//
// Zero-valued JSON fields leave the current Config values untouched, so the
// file may specify only a subset of settings.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	}
	if c.ClientOrigin != "" {
		config.ClientOrigin = c.ClientOrigin
	}
	if c.Environment != "" {
		config.Environment = c.Environment
	}
	if c.MaxImageBytes != 0 {
		config.MaxImageBytes = c.MaxImageBytes
	}
	if c.MaxProfilePicBytes != 0 {
		config.MaxProfilePicBytes = c.MaxProfilePicBytes
	}
}
