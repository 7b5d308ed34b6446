package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

func compileStore(t *testing.T, config domain.AssetStoreConfig) domain.CompiledStore {
	t.Helper()
	if config.BaseDir == "" {
		config.BaseDir = "/data"
	}
	store, err := config.Compile()
	require.NoError(t, err)
	return store
}

func TestPathResolver_LegacyFlat(t *testing.T) {
	resolver := NewPathResolver(compileStore(t, domain.AssetStoreConfig{Pattern: "/assets/:uid/:filename"}))
	asset := domain.Asset{UID: "u1", Filename: "logo.png", Locale: "en-us", URL: "https://host/logo.png"}

	res, err := resolver.Resolve(asset)
	require.NoError(t, err)

	assert.Equal(t, []string{"u1", "logo.png"}, res.Components, "legacy layout drops literals")
	assert.Equal(t, "en-us/u1/logo.png", res.RelativePath())
}

func TestPathResolver_PrefixedV2KeepsLiterals(t *testing.T) {
	resolver := NewPathResolver(compileStore(t, domain.AssetStoreConfig{
		Pattern: "/assets/:uid/:filename",
		Layout:  domain.LayoutPrefixedV2,
	}))
	asset := domain.Asset{UID: "u1", Filename: "logo.png", Locale: "en-us", URL: "https://host/logo.png"}

	res, err := resolver.Resolve(asset)
	require.NoError(t, err)

	assert.Equal(t, []string{"assets", "u1", "logo.png"}, res.Components)
}

func TestPathResolver_FolderPrefix(t *testing.T) {
	resolver := NewPathResolver(compileStore(t, domain.AssetStoreConfig{
		Pattern:              "/:uid/:filename",
		AssetFolderPrefixKey: "v3/assets",
	}))
	asset := domain.Asset{UID: "u1", Filename: "logo.png", Locale: "en-us", URL: "https://host/logo.png"}

	res, err := resolver.Resolve(asset)
	require.NoError(t, err)

	assert.Equal(t, "en-us/v3/assets/u1/logo.png", res.RelativePath())
}

func TestPathResolver_MissingPlaceholder(t *testing.T) {
	resolver := NewPathResolver(compileStore(t, domain.AssetStoreConfig{Pattern: "/:uid/:filename"}))

	_, err := resolver.Resolve(domain.Asset{Filename: "logo.png", Locale: "en-us"})

	var missing *domain.MissingPlaceholderError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "uid", missing.Key)
	assert.Contains(t, err.Error(), "uid")
}

func TestPathResolver_MissingSecondPlaceholder(t *testing.T) {
	resolver := NewPathResolver(compileStore(t, domain.AssetStoreConfig{Pattern: "/:uid/:title/:filename"}))

	_, err := resolver.Resolve(domain.Asset{UID: "u1", Filename: "logo.png", Locale: "en-us"})

	var missing *domain.MissingPlaceholderError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "title", missing.Key)
	assert.Equal(t, "u1", missing.AssetUID)
}

func TestPathResolver_MetadataPlaceholder(t *testing.T) {
	resolver := NewPathResolver(compileStore(t, domain.AssetStoreConfig{Pattern: "/:folder/:filename"}))
	asset := domain.Asset{UID: "u1", Filename: "logo.png", Locale: "en-us", Metadata: map[string]string{"folder": "brand"}}

	res, err := resolver.Resolve(asset)
	require.NoError(t, err)
	assert.Equal(t, []string{"brand", "logo.png"}, res.Components)
}

func TestPathResolver_RejectsTraversal(t *testing.T) {
	resolver := NewPathResolver(compileStore(t, domain.AssetStoreConfig{Pattern: "/:uid/:filename"}))

	for _, name := range []string{"..", ".", "a/b.png", `a\b.png`} {
		_, err := resolver.Resolve(domain.Asset{UID: "u1", Filename: name, Locale: "en-us"})
		var invalid *domain.InvalidSegmentError
		assert.True(t, errors.As(err, &invalid), name)
	}
}

func TestPathResolver_CDNMetadata(t *testing.T) {
	resolver := NewPathResolver(compileStore(t, domain.AssetStoreConfig{Pattern: "/:apiKey/:downloadId/:filename"}))
	asset := domain.Asset{
		UID:      "u1",
		Filename: "logo.png",
		Locale:   "en-us",
		URL:      "https://images.contentstack.io/v3/assets/blt111/blt222/5f1c/logo.png",
	}

	res, err := resolver.Resolve(asset)
	require.NoError(t, err)

	assert.Equal(t, "v3", res.Asset.APIVersion)
	assert.Equal(t, "blt111", res.Asset.APIKey)
	assert.Equal(t, "blt222", res.Asset.CDNDownloadID)
	assert.Equal(t, []string{"blt111", "blt222", "logo.png"}, res.Components)

	assert.Empty(t, asset.APIKey, "input asset is not mutated")
}

func TestExtractCDNMetadata_UnmatchedURL(t *testing.T) {
	asset := domain.Asset{URL: "https://example.com/logo.png", APIKey: "keep"}

	out := ExtractCDNMetadata(asset)

	assert.Equal(t, "keep", out.APIKey)
	assert.Empty(t, out.APIVersion)
	assert.Empty(t, out.CDNDownloadID)
}
