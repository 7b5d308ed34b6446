package app

import (
	"regexp"
	"strings"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

// cdnURLPattern matches Contentstack CDN asset URLs:
// https://{assets|images}.contentstack.io/{version}/assets/{api_key}/{download_id}/{hash}/{name}
var cdnURLPattern = regexp.MustCompile(`https://(assets|images)\.contentstack\.io/(v\d)/assets/([^/]+)/([^/]+)/([^/]+)/(.+)`)

// Resolution is the outcome of resolving an asset against the compiled pattern
type Resolution struct {
	// Asset is a copy of the input enriched with CDN metadata
	Asset domain.Asset
	// Components is the path below the locale folder, in order
	Components []string
}

// RelativePath joins the locale and components with forward slashes.
func (r Resolution) RelativePath() string {
	return strings.Join(append([]string{r.Asset.Locale}, r.Components...), "/")
}

// PathResolver turns asset metadata into path components.
// It performs no I/O and is safe for concurrent use.
type PathResolver struct {
	store domain.CompiledStore
}

// NewPathResolver creates a resolver for a compiled store
func NewPathResolver(store domain.CompiledStore) *PathResolver {
	return &PathResolver{store: store}
}

// Resolve substitutes every placeholder of the pattern. It never mutates
// the input; the returned Resolution carries an enriched copy.
func (r *PathResolver) Resolve(asset domain.Asset) (Resolution, error) {
	enriched := ExtractCDNMetadata(asset)

	components := make([]string, 0, len(r.store.FolderPrefix)+len(r.store.Pattern.Segments))
	components = append(components, r.store.FolderPrefix...)

	for _, seg := range r.store.Pattern.Segments {
		if !seg.IsPlaceholder() {
			if r.store.Layout == domain.LayoutPrefixedV2 {
				components = append(components, seg.Value)
			}
			continue
		}

		value, ok := enriched.Lookup(seg.Value)
		if !ok {
			return Resolution{}, &domain.MissingPlaceholderError{Key: seg.Value, AssetUID: asset.UID}
		}
		if !isSafeComponent(value) {
			return Resolution{}, &domain.InvalidSegmentError{Key: seg.Value, Value: value, AssetUID: asset.UID}
		}
		components = append(components, value)
	}

	return Resolution{Asset: enriched, Components: components}, nil
}

// ExtractCDNMetadata returns a copy of asset with API version, API key and
// download id taken from a recognised CDN URL. Other URLs leave the fields as they are.
func ExtractCDNMetadata(asset domain.Asset) domain.Asset {
	out := asset.Clone()
	m := cdnURLPattern.FindStringSubmatch(asset.URL)
	if m == nil {
		return out
	}
	if m[2] != "" {
		out.APIVersion = m[2]
	}
	if m[3] != "" {
		out.APIKey = m[3]
	}
	if m[4] != "" {
		out.CDNDownloadID = m[4]
	}
	return out
}

// isSafeComponent rejects values that would change directory depth
func isSafeComponent(v string) bool {
	if v == "." || v == ".." {
		return false
	}
	return !strings.ContainsAny(v, `/\`) && !strings.ContainsRune(v, 0)
}
