package domain

import (
	"fmt"
	"strings"
)

// Asset describes a remotely hosted file published by the content-sync
// pipeline. It is the input and output shape of every lifecycle operation.
type Asset struct {
	UID        string `json:"uid"`
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	DownloadID string `json:"download_id,omitempty"`
	Locale     string `json:"locale"`

	// InternalURL is the resolved local path (legacy_flat) or public
	// relative URL (prefixed_v2). It is only set by a successful download.
	InternalURL string `json:"_internal_url,omitempty"`

	// Populated from the CDN URL during path resolution
	APIVersion    string `json:"apiVersion,omitempty"`
	APIKey        string `json:"apiKey,omitempty"`
	CDNDownloadID string `json:"downloadId,omitempty"`

	// Metadata holds any additional string fields a pattern may reference.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Key identifies an asset across lifecycle events.
func (a Asset) Key() string {
	return a.Locale + "/" + a.UID
}

// Clone returns a deep copy of the asset.
func (a Asset) Clone() Asset {
	c := a
	if a.Metadata != nil {
		c.Metadata = make(map[string]string, len(a.Metadata))
		for k, v := range a.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// Lookup returns the value a pattern placeholder named key resolves to.
// Both the JSON field name and the Go-style camel case are accepted for
// the CDN-derived fields.
func (a Asset) Lookup(key string) (string, bool) {
	var v string
	switch key {
	case "uid":
		v = a.UID
	case "filename":
		v = a.Filename
	case "url":
		v = a.URL
	case "download_id":
		v = a.DownloadID
	case "locale":
		v = a.Locale
	case "_internal_url":
		v = a.InternalURL
	case "apiVersion", "api_version":
		v = a.APIVersion
	case "apiKey", "api_key":
		v = a.APIKey
	case "downloadId":
		v = a.CDNDownloadID
	default:
		v = a.Metadata[key]
	}
	if strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// ValidateForDownload checks the fields a download cannot proceed without.
func (a Asset) ValidateForDownload() error {
	if strings.TrimSpace(a.URL) == "" {
		return fmt.Errorf("%w: asset %q has no url", ErrInvalidAsset, a.UID)
	}
	if strings.TrimSpace(a.Locale) == "" {
		return fmt.Errorf("%w: asset %q has no locale", ErrInvalidAsset, a.UID)
	}
	return nil
}

// ValidateForRemoval checks the fields delete and unpublish need.
func (a Asset) ValidateForRemoval() error {
	if strings.TrimSpace(a.Locale) == "" {
		return fmt.Errorf("%w: asset %q has no locale", ErrInvalidAsset, a.UID)
	}
	return nil
}
