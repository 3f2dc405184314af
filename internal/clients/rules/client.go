package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	lru "github.com/hashicorp/golang-lru"

	"github.com/greyhelm/charkeep/internal/domain/rulebook"
	apperrors "github.com/greyhelm/charkeep/internal/errors"
)

const defaultCacheSize = 256

// Config holds configuration for the HTTP catalog client
type Config struct {
	HTTPClient *http.Client
	BaseURL    string

	// CacheSize bounds the read-through cache; catalog content changes
	// rarely so repeated resolutions hit the cache
	CacheSize int
}

type client struct {
	httpClient *http.Client
	baseURL    string
	cache      *lru.Cache
}

// New creates an HTTP catalog client with a read-through LRU cache
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, apperrors.InvalidArgument("cfg is required")
	}
	if cfg.BaseURL == "" {
		return nil, apperrors.InvalidArgument("base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog cache: %w", err)
	}

	return &client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		cache:      cache,
	}, nil
}

// get fetches a JSON document, consulting the cache first
func (c *client) get(ctx context.Context, path string, out any) error {
	if cached, ok := c.cache.Get(path); ok {
		return json.Unmarshal(cached.([]byte), out)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NotFoundf("catalog entry '%s' not found", path)
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.Internalf("catalog returned status %d for '%s'", resp.StatusCode, path)
	}

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}

	c.cache.Add(path, []byte(body))
	return json.Unmarshal(body, out)
}

// ListClasses returns every class definition
func (c *client) ListClasses(ctx context.Context) ([]*rulebook.Class, error) {
	var classes []*rulebook.Class
	if err := c.get(ctx, "/classes", &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// GetClass returns one class definition by key
func (c *client) GetClass(ctx context.Context, key string) (*rulebook.Class, error) {
	if key == "" {
		return nil, apperrors.InvalidArgument("class key is required")
	}

	var class rulebook.Class
	if err := c.get(ctx, "/classes/"+url.PathEscape(key), &class); err != nil {
		return nil, apperrors.Wrapf(err, "failed to get class '%s'", key)
	}
	return &class, nil
}

// GetClassLevel returns the grant table for one class level
func (c *client) GetClassLevel(ctx context.Context, classKey string, level int) (*rulebook.ClassLevel, error) {
	if classKey == "" {
		return nil, apperrors.InvalidArgument("class key is required")
	}

	var classLevel rulebook.ClassLevel
	path := fmt.Sprintf("/classes/%s/levels/%d", url.PathEscape(classKey), level)
	if err := c.get(ctx, path, &classLevel); err != nil {
		return nil, apperrors.Wrapf(err, "failed to get level %d for class '%s'", level, classKey)
	}
	return &classLevel, nil
}

// ListSubclasses returns the subclass options for a class
func (c *client) ListSubclasses(ctx context.Context, classKey string) ([]*rulebook.Subclass, error) {
	if classKey == "" {
		return nil, apperrors.InvalidArgument("class key is required")
	}

	var subclasses []*rulebook.Subclass
	if err := c.get(ctx, "/classes/"+url.PathEscape(classKey)+"/subclasses", &subclasses); err != nil {
		return nil, apperrors.Wrapf(err, "failed to list subclasses for '%s'", classKey)
	}
	return subclasses, nil
}

// ListFeats returns every feat definition
func (c *client) ListFeats(ctx context.Context) ([]*rulebook.Feat, error) {
	var feats []*rulebook.Feat
	if err := c.get(ctx, "/feats", &feats); err != nil {
		return nil, err
	}
	return feats, nil
}

// ListClassSpells returns the spells a class can learn up to the given spell level
func (c *client) ListClassSpells(ctx context.Context, classKey string, maxSpellLevel int) ([]*rulebook.Spell, error) {
	if classKey == "" {
		return nil, apperrors.InvalidArgument("class key is required")
	}

	var spells []*rulebook.Spell
	path := fmt.Sprintf("/classes/%s/spells?max_level=%d", url.PathEscape(classKey), maxSpellLevel)
	if err := c.get(ctx, path, &spells); err != nil {
		return nil, apperrors.Wrapf(err, "failed to list spells for '%s'", classKey)
	}
	return spells, nil
}
