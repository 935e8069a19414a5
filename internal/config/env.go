package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingEnv is returned when required environment variables are unset
// or empty. The message lists every missing name.
var ErrMissingEnv = errors.New("config: missing environment variables")

// Environment variable names.
const (
	EnvSnowflakeUser      = "SNOWFLAKE_USER"
	EnvSnowflakePassword  = "SNOWFLAKE_PASSWORD"
	EnvSnowflakeAccount   = "SNOWFLAKE_ACCOUNT"
	EnvSnowflakeWarehouse = "SNOWFLAKE_WAREHOUSE"
	EnvSnowflakeDatabase  = "SNOWFLAKE_DATABASE"
	EnvSnowflakeSchema    = "SNOWFLAKE_SCHEMA"
	EnvSnowflakeRole      = "SNOWFLAKE_ROLE"
	EnvStorageDSN         = "STORAGE_DSN"
	EnvGoogleProject      = "GOOGLE_CLOUD_PROJECT"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Warehouse holds the connection parameters for one storage kind. For
// snowflake the credential fields are set; for every other kind only DSN.
type Warehouse struct {
	Kind string

	User      string
	Password  string
	Account   string
	Warehouse string
	Database  string
	Schema    string
	Role      string

	DSN string
}

// LoadWarehouse resolves connection parameters for p.Storage from lookup
// (os.LookupEnv when nil). It performs no I/O beyond the lookups, so a
// missing variable is reported before any connection attempt.
func LoadWarehouse(p Pipeline, lookup LookupFunc) (Warehouse, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	w := Warehouse{Kind: p.Storage.Kind}

	if p.Storage.Kind != DefaultStorageKind {
		w.DSN = p.Storage.DSN
		if w.DSN == "" {
			w.DSN, _ = get(lookup, EnvStorageDSN)
		}
		if w.DSN == "" {
			return Warehouse{}, fmt.Errorf("%w: %s (storage.kind=%s)", ErrMissingEnv, EnvStorageDSN, p.Storage.Kind)
		}
		return w, nil
	}

	var missing []string
	require := func(key string, dst *string) {
		v, ok := get(lookup, key)
		if !ok {
			missing = append(missing, key)
			return
		}
		*dst = v
	}
	require(EnvSnowflakeUser, &w.User)
	require(EnvSnowflakePassword, &w.Password)
	require(EnvSnowflakeAccount, &w.Account)
	require(EnvSnowflakeWarehouse, &w.Warehouse)
	require(EnvSnowflakeDatabase, &w.Database)
	require(EnvSnowflakeSchema, &w.Schema)
	w.Role, _ = get(lookup, EnvSnowflakeRole)

	if len(missing) > 0 {
		return Warehouse{}, fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return w, nil
}

// ApplyEnv fills settings that may come from the environment when the
// pipeline file leaves them empty: the Vertex AI project.
func ApplyEnv(p *Pipeline, lookup LookupFunc) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if p.Translate.Options == nil {
		p.Translate.Options = Options{}
	}
	if p.Translate.Options.String("project_id", "") == "" {
		if v, ok := get(lookup, EnvGoogleProject); ok {
			p.Translate.Options["project_id"] = v
		}
	}
}

// get treats empty and whitespace-only values as unset. Values are returned
// as set; passwords may legitimately contain spaces.
func get(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
