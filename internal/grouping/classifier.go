package grouping

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/vk/bundlegrid/internal/asset"
)

// ErrUnknownKind is returned for assets whose type or source the classifier
// does not recognize.
var ErrUnknownKind = errors.New("unknown asset kind")

// Key identifies an optimal group.
type Key string

// None is the key of assets that must never be merged.
const None Key = ""

// Grouped reports whether k denotes a mergeable group.
func (k Key) Grouped() bool { return k != None }

// String implements fmt.Stringer.
func (k Key) String() string {
	if k == None {
		return "none"
	}
	return string(k)
}

// Classify computes the grouping key for a. It depends only on the asset's
// declared attributes, never on traversal state.
func Classify(a *asset.Asset) (Key, error) {
	if a == nil {
		return None, fmt.Errorf("grouping: %w: nil asset", ErrUnknownKind)
	}

	switch a.Source {
	case asset.SourceFile, asset.SourceInline, asset.SourceExternal:
	default:
		return None, fmt.Errorf("grouping: %w: asset %q has source %q", ErrUnknownKind, a.ID, a.Source)
	}

	var criteria []string
	switch a.Type {
	case asset.TypeStylesheet:
		criteria = stylesheetCriteria(a)
	case asset.TypeScript:
		criteria = scriptCriteria(a)
	default:
		return None, fmt.Errorf("grouping: %w: asset %q has type %q", ErrUnknownKind, a.ID, a.Type)
	}

	if a.IsExternal() || !a.Preprocess {
		return None, nil
	}
	return Key(strings.Join(criteria, "|")), nil
}

func stylesheetCriteria(a *asset.Asset) []string {
	media := strings.ToLower(strings.TrimSpace(a.Media))
	if media == "" {
		media = "all"
	}
	return []string{
		string(asset.TypeStylesheet),
		"media=" + lengthPrefixed(media),
		"every_page=" + strconv.FormatBool(a.EveryPage),
		"browsers=" + browsers(a.Browsers),
	}
}

func scriptCriteria(a *asset.Asset) []string {
	scope := strings.ToLower(strings.TrimSpace(a.Scope))
	if scope == "" {
		scope = asset.ScopeHeader
	}
	return []string{
		string(asset.TypeScript),
		"scope=" + lengthPrefixed(scope),
		"every_page=" + strconv.FormatBool(a.EveryPage),
		"defer=" + strconv.FormatBool(a.Defer),
		"browsers=" + browsers(a.Browsers),
	}
}

// browsers serializes the condition set in sorted key order.
func browsers(conditions map[string]string) string {
	if len(conditions) == 0 {
		return ""
	}
	names := make([]string, 0, len(conditions))
	for name := range conditions {
		names = append(names, name)
	}
	slices.Sort(names)

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(lengthPrefixed(name))
		sb.WriteByte('=')
		sb.WriteString(lengthPrefixed(conditions[name]))
	}
	return sb.String()
}

// lengthPrefixed renders s as "<len>:<s>" so free text can never be read as
// a separator.
func lengthPrefixed(s string) string {
	return strconv.Itoa(len(s)) + ":" + s
}

// Cache memoizes Classify for the lifetime of one grouping run.
type Cache struct {
	keys map[*asset.Asset]Key
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{keys: make(map[*asset.Asset]Key)}
}

// Key returns the cached key for a, classifying it on first use.
func (c *Cache) Key(a *asset.Asset) (Key, error) {
	if k, ok := c.keys[a]; ok {
		return k, nil
	}
	k, err := Classify(a)
	if err != nil {
		return None, err
	}
	c.keys[a] = k
	return k, nil
}

// Lookup returns the key of an already classified asset.
func (c *Cache) Lookup(a *asset.Asset) (Key, bool) {
	k, ok := c.keys[a]
	return k, ok
}

// Len returns the number of classified assets.
func (c *Cache) Len() int { return len(c.keys) }
