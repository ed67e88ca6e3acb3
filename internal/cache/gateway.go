package cache

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const revalidateTimeout = 15 * time.Second

// Config describes one gateway generation. Version names the cache
// namespaces; bumping it retires the previous generation's caches on
// activate.
type Config struct {
	Origin    string   // upstream origin, e.g. http://localhost:3000
	APIPrefix string   // request paths below this are network-first
	Version   string   // cache namespace suffix
	Manifest  []string // shell asset paths precached at install
}

type gatewayState int

const (
	stateCreated gatewayState = iota
	stateInstalled
	stateActive
)

// Gateway intercepts every request headed for the app origin and decides
// whether to serve from cache, network, or a synthesized fallback.
//
// Dispatch per request: API-prefixed paths are network-first and never
// cached; everything else is cache-first with a detached background
// revalidation whose result overwrites the runtime entry last-writer-wins.
type Gateway struct {
	cfg      Config
	store    Store
	upstream http.RoundTripper

	mu    sync.Mutex
	state gatewayState
	wg    sync.WaitGroup // in-flight background revalidations
}

func NewGateway(cfg Config, store Store, upstream http.RoundTripper) *Gateway {
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/"
	}
	if upstream == nil {
		upstream = http.DefaultTransport
	}
	return &Gateway{cfg: cfg, store: store, upstream: upstream}
}

func (g *Gateway) staticNamespace() string  { return "static-" + g.cfg.Version }
func (g *Gateway) runtimeNamespace() string { return "runtime-" + g.cfg.Version }

// Install seeds the static cache with the shell manifest. It does not wait
// for a previous generation to retire; Activate (or a skip-waiting control
// message) performs the cutover.
func (g *Gateway) Install(ctx context.Context) error {
	for _, path := range g.cfg.Manifest {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.Origin+path, nil)
		if err != nil {
			return err
		}
		resp, err := g.upstream.RoundTrip(req)
		if err != nil {
			return err
		}
		entry, err := entryFromResponse(resp)
		if err != nil {
			return err
		}
		if !successStatus(entry.Status) {
			continue
		}
		if err := g.store.Put(ctx, g.staticNamespace(), Key(http.MethodGet, g.cfg.Origin+path), entry); err != nil {
			return err
		}
	}

	g.mu.Lock()
	if g.state == stateCreated {
		g.state = stateInstalled
	}
	g.mu.Unlock()
	return nil
}

// Activate garbage-collects cache namespaces from previous versions and
// claims all traffic for this generation.
func (g *Gateway) Activate(ctx context.Context) error {
	allowed := map[string]bool{
		g.staticNamespace():  true,
		g.runtimeNamespace(): true,
	}
	namespaces, err := g.store.Namespaces(ctx)
	if err != nil {
		return err
	}
	for _, ns := range namespaces {
		if allowed[ns] {
			continue
		}
		if err := g.store.DropNamespace(ctx, ns); err != nil {
			return err
		}
	}

	g.mu.Lock()
	g.state = stateActive
	g.mu.Unlock()
	return nil
}

// ForceActivate is the skip-waiting control message: immediate cutover.
func (g *Gateway) ForceActivate(ctx context.Context) error {
	return g.Activate(ctx)
}

// ClearCaches drops every namespace on demand (manual cache-busting).
func (g *Gateway) ClearCaches(ctx context.Context) error {
	return g.store.Clear(ctx)
}

func (g *Gateway) active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == stateActive
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if scheme := r.URL.Scheme; scheme != "" && scheme != "http" && scheme != "https" {
		g.passThrough(w, r)
		return
	}
	if !g.active() {
		g.passThrough(w, r)
		return
	}
	if strings.HasPrefix(r.URL.Path, g.cfg.APIPrefix) {
		g.networkFirst(w, r)
		return
	}
	g.cacheFirst(w, r)
}

// networkFirst always hits the network; on failure it synthesizes a
// machine-readable offline response. Successful API responses stay fresh:
// they are never cached.
func (g *Gateway) networkFirst(w http.ResponseWriter, r *http.Request) {
	resp, err := g.fetch(r)
	if err != nil {
		writeOfflineJSON(w)
		return
	}
	defer resp.Body.Close()
	copyResponse(w, resp, "BYPASS")
}

// cacheFirst serves a cached entry immediately when one exists and
// revalidates in the background; otherwise it blocks on the network.
func (g *Gateway) cacheFirst(w http.ResponseWriter, r *http.Request) {
	key := Key(r.Method, g.upstreamURL(r))

	if entry, ok := g.lookup(r.Context(), key); ok {
		writeEntry(w, entry, "HIT")
		g.revalidate(r, key)
		return
	}

	resp, err := g.fetch(r)
	if err != nil {
		if isNavigation(r) {
			writeOfflinePage(w)
			return
		}
		http.Error(w, "upstream unreachable", http.StatusBadGateway)
		return
	}

	entry, err := entryFromResponse(resp)
	if err != nil {
		http.Error(w, "upstream read failed", http.StatusBadGateway)
		return
	}
	if successStatus(entry.Status) {
		if err := g.store.Put(r.Context(), g.runtimeNamespace(), key, entry); err != nil {
			log.Printf("cache write failed for %s: %v", key, err)
		}
	}
	writeEntry(w, entry, "MISS")
}

// lookup checks the runtime namespace first, then the precached shell.
func (g *Gateway) lookup(ctx context.Context, key string) (Entry, bool) {
	if entry, ok, err := g.store.Get(ctx, g.runtimeNamespace(), key); err == nil && ok {
		return entry, true
	}
	entry, ok, err := g.store.Get(ctx, g.staticNamespace(), key)
	if err != nil {
		return Entry{}, false
	}
	return entry, ok
}

// revalidate refreshes a cached key in a detached task. The caller never
// waits on it; failures are swallowed and the stale entry stays
// authoritative until the next successful fetch.
func (g *Gateway) revalidate(r *http.Request, key string) {
	req, err := http.NewRequest(r.Method, g.upstreamURL(r), nil)
	if err != nil {
		return
	}
	req.Header = r.Header.Clone()

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), revalidateTimeout)
		defer cancel()

		resp, err := g.upstream.RoundTrip(req.WithContext(ctx))
		if err != nil {
			return
		}
		entry, err := entryFromResponse(resp)
		if err != nil || !successStatus(entry.Status) {
			return
		}
		if err := g.store.Put(ctx, g.runtimeNamespace(), key, entry); err != nil {
			log.Printf("revalidation write failed for %s: %v", key, err)
		}
	}()
}

// waitBackground blocks until in-flight revalidations settle. Tests use it;
// production callers never join background work.
func (g *Gateway) waitBackground() {
	g.wg.Wait()
}

func (g *Gateway) passThrough(w http.ResponseWriter, r *http.Request) {
	resp, err := g.fetch(r)
	if err != nil {
		http.Error(w, "upstream unreachable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	copyResponse(w, resp, "")
}

func (g *Gateway) fetch(r *http.Request) (*http.Response, error) {
	req, err := http.NewRequestWithContext(r.Context(), r.Method, g.upstreamURL(r), r.Body)
	if err != nil {
		return nil, err
	}
	req.Header = r.Header.Clone()
	return g.upstream.RoundTrip(req)
}

func (g *Gateway) upstreamURL(r *http.Request) string {
	u := url.URL{Path: r.URL.Path, RawQuery: r.URL.RawQuery}
	return g.cfg.Origin + u.String()
}

func entryFromResponse(resp *http.Response) (Entry, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: time.Now(),
	}, nil
}

func successStatus(status int) bool {
	return status >= 200 && status < 300
}

// isNavigation detects page navigations, which always get the offline page
// rather than a raw error.
func isNavigation(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeEntry(w http.ResponseWriter, entry Entry, cacheStatus string) {
	for name, values := range entry.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(entry.Status)
	_, _ = w.Write(entry.Body)
}

func copyResponse(w http.ResponseWriter, resp *http.Response, cacheStatus string) {
	for name, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	if cacheStatus != "" {
		w.Header().Set("X-Cache", cacheStatus)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func writeOfflineJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`{"error":"offline","message":"network unavailable, try again later"}`))
}

const offlinePage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Offline</title></head>
<body>
<h1>You are offline</h1>
<p>The page could not be loaded. Check your connection and retry.</p>
</body>
</html>`

func writeOfflinePage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(offlinePage))
}
