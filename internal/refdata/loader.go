package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/glorin2500/Sentinel-sub000/internal/retry"
	"github.com/glorin2500/Sentinel-sub000/internal/security"
)

// Overlay is the JSON file format for deployment-specific reference data.
// Everything is optional; present fields are merged over the built-in set.
type Overlay struct {
	Blacklist []BlacklistEntry `json:"blacklist,omitempty"`
	Trusted   []string         `json:"trusted,omitempty"`
	Keywords  []string         `json:"keywords,omitempty"`
	Patterns  []string         `json:"patterns,omitempty"`
}

// LoadOverlay reads an overlay file. A missing path returns an empty overlay.
func LoadOverlay(path string) (*Overlay, error) {
	if path == "" {
		return &Overlay{}, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("refdata: read overlay file: %w", err)
	}
	var o Overlay
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("refdata: parse overlay file: %w", err)
	}
	return &o, nil
}

// maxOverlayBytes caps remote overlay downloads.
const maxOverlayBytes = 4 << 20

var overlayClient = &http.Client{Timeout: 10 * time.Second}

// FetchOverlay downloads an overlay from a remote URL. The URL is validated
// against SSRF before any request is made. Transient fetch failures are
// retried with backoff; malformed payloads are not.
func FetchOverlay(ctx context.Context, rawURL string) (*Overlay, error) {
	if err := security.ValidateEndpointURL(rawURL); err != nil {
		return nil, fmt.Errorf("refdata: overlay URL rejected: %w", err)
	}

	var o Overlay
	err := retry.Do(ctx, 3, 500*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("refdata: build overlay request: %w", err))
		}
		resp, err := overlayClient.Do(req)
		if err != nil {
			return fmt.Errorf("refdata: fetch overlay: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("refdata: fetch overlay: unexpected status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return retry.Permanent(err)
			}
			return err
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxOverlayBytes))
		if err != nil {
			return fmt.Errorf("refdata: read overlay response: %w", err)
		}
		if err := json.Unmarshal(data, &o); err != nil {
			return retry.Permanent(fmt.Errorf("refdata: parse overlay response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Provider assembles the active Set from built-in data, the optional overlay
// file, and the store, and lets admins swap in a rebuilt Set at runtime.
// Current() is safe for concurrent use and never returns nil.
type Provider struct {
	store       Store // nil in demo mode
	overlayPath string
	current     atomic.Pointer[Set]
	imported    atomic.Pointer[Overlay] // last overlay imported at runtime
}

// NewProvider builds the initial Set and returns the provider.
func NewProvider(ctx context.Context, store Store, overlayPath string) (*Provider, error) {
	p := &Provider{store: store, overlayPath: overlayPath}
	if err := p.Reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Current returns the active reference data snapshot.
func (p *Provider) Current() *Set {
	return p.current.Load()
}

// Reload rebuilds the Set from all sources and swaps it in. In-flight
// evaluations keep using the snapshot they started with.
func (p *Provider) Reload(ctx context.Context) error {
	overlay, err := LoadOverlay(p.overlayPath)
	if err != nil {
		return err
	}

	entries := append([]BlacklistEntry{}, defaultBlacklist...)
	trusted := append([]string{}, defaultTrusted...)
	keywords := append([]string{}, defaultKeywords...)
	patterns := append([]string{}, defaultPatterns...)

	if p.store != nil {
		stored, err := p.store.ListEntries(ctx)
		if err != nil {
			return fmt.Errorf("refdata: load blacklist from store: %w", err)
		}
		entries = mergeEntries(entries, stored)

		storedTrusted, err := p.store.ListTrusted(ctx)
		if err != nil {
			return fmt.Errorf("refdata: load trusted list from store: %w", err)
		}
		trusted = append(trusted, storedTrusted...)
	}

	entries = mergeEntries(entries, overlay.Blacklist)
	trusted = append(trusted, overlay.Trusted...)
	keywords = append(keywords, overlay.Keywords...)
	patterns = append(patterns, overlay.Patterns...)

	if imp := p.imported.Load(); imp != nil {
		entries = mergeEntries(entries, imp.Blacklist)
		trusted = append(trusted, imp.Trusted...)
		keywords = append(keywords, imp.Keywords...)
		patterns = append(patterns, imp.Patterns...)
	}

	set, err := NewSet(entries, trusted, keywords, patterns)
	if err != nil {
		return err
	}
	p.current.Store(set)
	return nil
}

// Import merges an overlay fetched at runtime. Entries are persisted to the
// store when one is configured so they survive restarts; in demo mode they
// live until the process exits.
func (p *Provider) Import(ctx context.Context, o *Overlay) error {
	for i := range o.Blacklist {
		if err := o.Blacklist[i].Validate(); err != nil {
			return err
		}
	}

	if p.store != nil {
		for i := range o.Blacklist {
			if err := p.store.UpsertEntry(ctx, &o.Blacklist[i]); err != nil {
				return fmt.Errorf("refdata: import blacklist entry: %w", err)
			}
		}
		for _, id := range o.Trusted {
			if err := p.store.AddTrusted(ctx, id); err != nil {
				return fmt.Errorf("refdata: import trusted identifier: %w", err)
			}
		}
	}

	// Merge into any previously imported overlay so repeated imports stack.
	merged := &Overlay{}
	if prev := p.imported.Load(); prev != nil {
		merged.Blacklist = append(merged.Blacklist, prev.Blacklist...)
		merged.Trusted = append(merged.Trusted, prev.Trusted...)
		merged.Keywords = append(merged.Keywords, prev.Keywords...)
		merged.Patterns = append(merged.Patterns, prev.Patterns...)
	}
	merged.Blacklist = mergeEntries(merged.Blacklist, o.Blacklist)
	merged.Trusted = append(merged.Trusted, o.Trusted...)
	merged.Keywords = append(merged.Keywords, o.Keywords...)
	merged.Patterns = append(merged.Patterns, o.Patterns...)
	p.imported.Store(merged)

	return p.Reload(ctx)
}

// mergeEntries overlays later entries on earlier ones by identifier.
func mergeEntries(base, overlay []BlacklistEntry) []BlacklistEntry {
	index := make(map[string]int, len(base))
	for i, e := range base {
		index[strings.ToLower(e.Identifier)] = i
	}
	for _, e := range overlay {
		if i, ok := index[strings.ToLower(e.Identifier)]; ok {
			base[i] = e
			continue
		}
		index[strings.ToLower(e.Identifier)] = len(base)
		base = append(base, e)
	}
	return base
}
