// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from four layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. Optional `conf/global.yaml`.
  3. Legacy flat variables kept from the previous site:
     GOOGLE_SHEET_ID, GOOGLE_SERVICE_ACCOUNT_BASE64,
     NEXT_PUBLIC_WHATSAPP_NUMBER, and WHATSAPP_NUMBER.  When both number
     variables are set, WHATSAPP_NUMBER wins.
  4. Environment variables prefixed `PROPERTYSITE_`, where `__` maps to
     “.” (e.g., `PROPERTYSITE_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
defaulted, validated, and enriched with the runtime root path.  The
caller owns the result; cmd/web builds it once and hands it down.

Instrumentation
---------------
  • DEBUG spans: root discovery, YAML read, env overlay.
  • ERROR spans: YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span:  final “config loaded” with key highlights.  Secrets are
    reported as present or absent, never printed.
  • Logs use the global sugared logger (`zap.S()`) so early boot issues
    surface before the file logger is installed.
*/
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/propertysite/internal/vault"
)

// EnvPrefix prefixes every structured environment override.
const EnvPrefix = "PROPERTYSITE_"

// legacyVar maps one of the previous site's variables onto a koanf key.
type legacyVar struct {
	env string
	key string
}

// legacyEnv is ordered by rising precedence: a later non-empty variable
// beats an earlier one bound to the same key.
var legacyEnv = []legacyVar{
	{"GOOGLE_SHEET_ID", "sheets.spreadsheet_id"},
	{"GOOGLE_SERVICE_ACCOUNT_BASE64", "sheets.credentials_b64"},
	{"NEXT_PUBLIC_WHATSAPP_NUMBER", "whatsapp.number"},
	{"WHATSAPP_NUMBER", "whatsapp.number"},
}

// legacyKey returns the koanf key for a legacy variable, or false when the
// name is unknown or shadowed by a later variable that is set.
func legacyKey(name string) (string, bool) {
	for i, v := range legacyEnv {
		if v.env != name {
			continue
		}
		for _, later := range legacyEnv[i+1:] {
			if later.key == v.key && strings.TrimSpace(os.Getenv(later.env)) != "" {
				return "", false
			}
		}
		return v.key, true
	}
	return "", false
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves PROPERTYSITE_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to the working directory.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads every layer and returns the validated Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	cfg, err := loadFrom(root)
	if err != nil {
		return nil, err
	}

	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"sheet_configured", cfg.Sheets.SpreadsheetID != "",
		"credentials_present", cfg.Sheets.CredentialsB64 != "",
		"root", cfg.Paths.Root,
	)
	return cfg, nil
}

func loadFrom(root string) (*Config, error) {
	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
			return nil, err
		}
		zap.S().Debugw("config yaml absent", "file", yamlPath)
	} else {
		zap.S().Debugw("config yaml loaded", "file", yamlPath)
	}

	// Legacy names: only non-empty values, so an unset variable never
	// blanks a YAML value.
	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		mapped, ok := legacyKey(key)
		if !ok || strings.TrimSpace(value) == "" {
			return "", nil
		}
		return mapped, value
	}), nil); err != nil {
		zap.S().Errorw("config legacy env overlay failed", "err", err)
		return nil, err
	}

	// Env overrides: PROPERTYSITE_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.applyDefaults(k.Exists("http.rate_limit"))
	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}
	return &cfg, nil
}

/*──────────────────────────── secrets ─────────────────────────────────────*/

// NeedsVault reports whether any value is a Vault reference.
func (c *Config) NeedsVault() bool {
	return vault.IsRef(c.Sheets.CredentialsB64)
}

// ResolveSecrets replaces Vault references with their values.  On failure
// the reference is cleared so the intake endpoint reports a configuration
// error instead of sending the reference string to Google.
func (c *Config) ResolveSecrets(ctx context.Context, g vault.Getter) error {
	v, err := vault.ResolveRef(ctx, g, c.Sheets.CredentialsB64)
	if err != nil {
		c.Sheets.CredentialsB64 = ""
		return err
	}
	c.Sheets.CredentialsB64 = v
	return nil
}
