package config

import (
	"errors"
	"strings"
	"testing"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func fullSnowflakeEnv() map[string]string {
	return map[string]string{
		EnvSnowflakeUser:      "etl",
		EnvSnowflakePassword:  " p@ss ",
		EnvSnowflakeAccount:   "xy12345",
		EnvSnowflakeWarehouse: "COMPUTE_WH",
		EnvSnowflakeDatabase:  "MARKETING",
		EnvSnowflakeSchema:    "PUBLIC",
	}
}

func TestLoadWarehouse_Snowflake(t *testing.T) {
	t.Parallel()

	env := fullSnowflakeEnv()
	env[EnvSnowflakeRole] = "LOADER"
	w, err := LoadWarehouse(Default(), mapLookup(env))
	if err != nil {
		t.Fatalf("LoadWarehouse: %v", err)
	}
	if w.User != "etl" || w.Account != "xy12345" || w.Warehouse != "COMPUTE_WH" ||
		w.Database != "MARKETING" || w.Schema != "PUBLIC" || w.Role != "LOADER" {
		t.Fatalf("warehouse = %+v", w)
	}
	if w.Password != " p@ss " {
		t.Fatalf("password altered: %q", w.Password)
	}
}

func TestLoadWarehouse_MissingListsEveryName(t *testing.T) {
	t.Parallel()

	env := fullSnowflakeEnv()
	delete(env, EnvSnowflakeAccount)
	env[EnvSnowflakeSchema] = "   "

	_, err := LoadWarehouse(Default(), mapLookup(env))
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("err = %v, want ErrMissingEnv", err)
	}
	for _, name := range []string{EnvSnowflakeAccount, EnvSnowflakeSchema} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
	if strings.Contains(err.Error(), EnvSnowflakeRole) {
		t.Errorf("optional %s reported as missing", EnvSnowflakeRole)
	}
}

func TestLoadWarehouse_OtherKinds(t *testing.T) {
	t.Parallel()

	p := Default()
	p.Storage.Kind = "sqlite"

	if _, err := LoadWarehouse(p, mapLookup(nil)); !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("err = %v, want ErrMissingEnv", err)
	}

	w, err := LoadWarehouse(p, mapLookup(map[string]string{EnvStorageDSN: "leads.db"}))
	if err != nil || w.DSN != "leads.db" || w.Kind != "sqlite" {
		t.Fatalf("env dsn: %+v, %v", w, err)
	}

	p.Storage.DSN = "config.db"
	w, err = LoadWarehouse(p, mapLookup(map[string]string{EnvStorageDSN: "leads.db"}))
	if err != nil || w.DSN != "config.db" {
		t.Fatalf("config dsn should win: %+v, %v", w, err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	p := Default()
	ApplyEnv(&p, mapLookup(map[string]string{EnvGoogleProject: "acme-prod"}))
	if got := p.Translate.Options.String("project_id", ""); got != "acme-prod" {
		t.Fatalf("project_id = %q", got)
	}

	p.Translate.Options["project_id"] = "from-file"
	ApplyEnv(&p, mapLookup(map[string]string{EnvGoogleProject: "acme-prod"}))
	if got := p.Translate.Options.String("project_id", ""); got != "from-file" {
		t.Fatalf("file value overridden: %q", got)
	}
}
