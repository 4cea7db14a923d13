// Package assets generates deterministic stock imagery URLs for catalog
// entities. URLs are seeded from the entity name so repeated calls always
// produce the same image set without storing anything.
package assets

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	unsplashBase = "https://source.unsplash.com"
	picsumBase   = "https://picsum.photos"

	// DefaultProbeTimeout bounds HEAD probes of candidate URLs.
	DefaultProbeTimeout = 3 * time.Second
)

// ImageSet holds the candidate URLs for one image slot. Primary and
// Secondary are keyword searches; Fallback is a plain placeholder that
// always resolves.
type ImageSet struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Fallback  string `json:"fallback"`
	Alt       string `json:"alt"`
}

// ImageType selects which product image slot to generate.
type ImageType string

const (
	ImageMain      ImageType = "main"
	ImageDetail    ImageType = "detail"
	ImageLifestyle ImageType = "lifestyle"
)

// seedFor derives a stable numeric seed in [0, 10000) from a key.
func seedFor(key string) int {
	sum := md5.Sum([]byte(key))
	n, _ := strconv.ParseUint(hex.EncodeToString(sum[:])[:8], 16, 64)
	return int(n % 10000)
}

// ProductImage returns the image set for a product slot. The same product
// name and slot always yield the same URLs.
func ProductImage(productName string, typ ImageType) ImageSet {
	clean := strings.ReplaceAll(strings.ToLower(productName), " ", "+")
	seed := seedFor(clean + "_" + string(typ))

	var primary, secondary string
	switch typ {
	case ImageDetail:
		primary = clean + "+detail"
		secondary = "watch+mechanism"
	case ImageLifestyle:
		primary = clean + "+lifestyle"
		secondary = "watch+wrist"
	default:
		primary = "seiko+" + clean
		secondary = clean + "+watch"
	}

	return ImageSet{
		Primary:   searchURL(primary, 800, 800, seed),
		Secondary: searchURL(secondary, 800, 800, seed),
		Fallback:  fmt.Sprintf("%s/800/800?random=%d", picsumBase, seed),
		Alt:       productName,
	}
}

// CategoryBanner returns the banner image set for a category page.
func CategoryBanner(categoryName string) ImageSet {
	clean := strings.ReplaceAll(strings.ToLower(categoryName), " ", "+")
	seed := seedFor("hero_" + clean)
	return ImageSet{
		Primary:   searchURL("seiko+"+clean+"+watch", 1920, 600, seed),
		Secondary: searchURL("luxury+timepiece", 1920, 600, seed),
		Fallback:  fmt.Sprintf("%s/1920/600?random=%d", picsumBase, seed),
		Alt:       categoryName + " collection",
	}
}

func searchURL(keywords string, w, h, seed int) string {
	return fmt.Sprintf("%s/%dx%d/?%s&sig=%d", unsplashBase, w, h, url.QueryEscape(keywords), seed)
}

// Resolve returns the first candidate in the set that answers a HEAD
// request with a success status. The fallback is returned without
// probing; it always resolves. A nil client gets DefaultProbeTimeout.
func (s ImageSet) Resolve(ctx context.Context, client *http.Client) string {
	if client == nil {
		client = &http.Client{Timeout: DefaultProbeTimeout}
	}
	for _, candidate := range []string{s.Primary, s.Secondary} {
		if probe(ctx, client, candidate) {
			return candidate
		}
	}
	return s.Fallback
}

func probe(ctx context.Context, client *http.Client, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 400
}
