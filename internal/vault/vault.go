// internal/vault/vault.go
//
// Vault client wrapper.
//
// Context
// -------
//   - Provides a concurrency-safe client around the HashiCorp Vault Go SDK.
//   - Adds background token renewal, a KV-v2 helper, and per-key caching.
//   - Configuration values of the form `vault:<mount>/<path>#<key>` are
//     resolved through ResolveRef so the spreadsheet credential never has to
//     sit in a flat file.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, log)                  // during boot.
//  2. v,   err := vault.ResolveRef(ctx, cli, raw)      // config values.
//  3. pw,  err := cli.GetKV(ctx, path, key, ttl)       // anywhere else.
//
// Environment expectations
// ------------------------
//   - VAULT_ADDR   scheme and host of the Vault server.
//   - VAULT_TOKEN  initial token (falls back to ~/.vault-token).
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

//
// SECTION 1.  Public façade
//

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client
	log *zap.SugaredLogger

	cacheMu sync.RWMutex
	cache   map[string]cached // path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client and starts a background token-renewal loop
// bound to ctx.
func New(ctx context.Context, log *zap.SugaredLogger) (*Client, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{
		api:   apiCli,
		log:   log,
		cache: make(map[string]cached),
	}
	go c.renewLoop(ctx)
	return c, nil
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result is
// cached for that duration.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}
	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		cv, ok := c.cache[canonical]
		c.cacheMu.RUnlock()
		if ok && time.Now().Before(cv.exp) {
			return cv.val, nil
		}
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", canonical)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}
	return sval, nil
}

//
// SECTION 2.  Config references
//

// RefPrefix marks a configuration value stored in Vault.
const RefPrefix = "vault:"

// refTTL bounds how long a resolved reference is cached.
const refTTL = 5 * time.Minute

// Getter is the subset of Client that ResolveRef needs.
type Getter interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// IsRef reports whether v is a Vault reference.
func IsRef(v string) bool { return strings.HasPrefix(strings.TrimSpace(v), RefPrefix) }

// ParseRef splits `vault:<path>#<key>` into its parts.
func ParseRef(v string) (path, key string, err error) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, RefPrefix) {
		return "", "", fmt.Errorf("not a vault reference: %q", v)
	}
	body := strings.TrimPrefix(v, RefPrefix)
	path, key, ok := strings.Cut(body, "#")
	if !ok || path == "" || key == "" || !strings.Contains(path, "/") {
		return "", "", fmt.Errorf("vault reference %q must look like vault:<mount>/<path>#<key>", v)
	}
	return path, key, nil
}

// ResolveRef returns v unchanged unless it is a Vault reference, in which
// case the referenced value is fetched through g.  A reference with a nil
// getter is an error.
func ResolveRef(ctx context.Context, g Getter, v string) (string, error) {
	if !IsRef(v) {
		return v, nil
	}
	path, key, err := ParseRef(v)
	if err != nil {
		return "", err
	}
	if g == nil {
		return "", fmt.Errorf("vault reference %s#%s but no vault client configured", path, key)
	}
	return g.GetKV(ctx, path, key, refTTL)
}

//
// SECTION 3.  Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
	for ctx.Err() == nil {
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		if err != nil {
			c.log.Warnw("vault token renew failed", "err", err)
			backoff(ctx, 30*time.Second)
			continue
		}
		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			c.log.Infow("vault token is not renewable, sleeping", "for", time.Hour)
			backoff(ctx, time.Hour)
			continue
		}
		c.watch(ctx, sec)
	}
}

// watch runs a lifetime watcher for sec until it stops or ctx ends.
func (c *Client) watch(ctx context.Context, sec *vault.Secret) {
	w, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{Secret: sec})
	if err != nil {
		c.log.Warnw("vault watcher init failed", "err", err)
		backoff(ctx, 30*time.Second)
		return
	}
	go w.Start()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.DoneCh():
			if err != nil {
				c.log.Warnw("vault token renewal stopped", "err", err)
			}
			backoff(ctx, 15*time.Second)
			return
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.log.Debugw("vault token renewed", "ttl_s", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

//
// SECTION 4.  Helpers
//

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
