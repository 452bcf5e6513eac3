package template

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/CodeIvet/patanaa/internal/cache"
	"github.com/CodeIvet/patanaa/internal/model"
)

// NameResolver maps UPNs to printable display names.
type NameResolver interface {
	ResolveNames(ctx context.Context, upns []string) (map[string]string, error)
}

// DirectoryLookup is the directory call the resolver batches behind the
// cache.
type DirectoryLookup interface {
	GetDisplayNames(ctx context.Context, upns []string) (map[string]string, error)
}

// DisplayNameResolver resolves names through an optional cache, the
// directory, and finally the admin-maintained override table. Overrides only
// replace names of UPNs the earlier stages produced.
type DisplayNameResolver struct {
	lookup DirectoryLookup
	db     *gorm.DB
	cache  *cache.DisplayNameCache
}

func NewDisplayNameResolver(lookup DirectoryLookup, db *gorm.DB, c *cache.DisplayNameCache) *DisplayNameResolver {
	return &DisplayNameResolver{lookup: lookup, db: db, cache: c}
}

func (r *DisplayNameResolver) ResolveNames(ctx context.Context, upns []string) (map[string]string, error) {
	names, misses := r.cache.Get(ctx, upns)

	if len(misses) > 0 {
		resolved, err := r.lookup.GetDisplayNames(ctx, misses)
		if err != nil {
			return nil, err
		}
		for upn, name := range resolved {
			names[upn] = name
		}
		r.cache.Set(ctx, resolved)
	}

	var mappings []model.UserMapping
	if err := r.db.WithContext(ctx).Order(`"DisplayName" ASC`).Find(&mappings).Error; err != nil {
		return nil, err
	}
	for _, mapping := range mappings {
		if _, ok := names[mapping.Upn]; ok {
			names[mapping.Upn] = mapping.DisplayName
		}
	}

	return names, nil
}

// FormatDisplayName turns the directory's "Last, First" into "First Last".
// Single-part names pass through, a name that resolves to nothing becomes
// "Unknown Participant".
func FormatDisplayName(raw string) string {
	last, first, found := strings.Cut(raw, ", ")
	if !found {
		first = ""
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	default:
		return "Unknown Participant"
	}
}
