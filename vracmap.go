// Package vracmap turns a shop extract and a partner list into map markers:
// each shop is classified, formatted into popup markup and checked for
// partnership before being handed to the map surface.
package vracmap

import (
	"compress/bzip2"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Default dataset locations, relative to the working directory.
const (
	DefaultShopsSource    = "./data/cache_data.json"
	DefaultPartnersSource = "./data/jtb_partners.json"
)

// Config contains the options used to load a Dataset.
type Config struct {
	ShopsSource    string             // path or http(s) URL of the shop document
	PartnersSource string             // path or http(s) URL of the partner document
	CacheDir       string             // where URL sources are kept; "" disables caching
	HTTPClient     *http.Client       // client for URL sources
	Logger         *log.Logger        // diagnostic channel
	Unclassified   UnclassifiedPolicy // pipeline handling of unclassified shops
}

// Option is a functional option for configuring a load.
type Option func(*Config)

// WithShopsSource sets the shop document location.
func WithShopsSource(src string) Option {
	return func(c *Config) {
		c.ShopsSource = src
	}
}

// WithPartnersSource sets the partner document location.
func WithPartnersSource(src string) Option {
	return func(c *Config) {
		c.PartnersSource = src
	}
}

// WithCacheDir sets the directory URL sources are downloaded into.
func WithCacheDir(dir string) Option {
	return func(c *Config) {
		c.CacheDir = dir
	}
}

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = hc
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithUnclassifiedPolicy sets how the pipeline treats unclassified shops.
func WithUnclassifiedPolicy(p UnclassifiedPolicy) Option {
	return func(c *Config) {
		c.Unclassified = p
	}
}

// httpClient is the shared default client with a bounded timeout.
var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

func defaultConfig() *Config {
	return &Config{
		ShopsSource:    DefaultShopsSource,
		PartnersSource: DefaultPartnersSource,
		HTTPClient:     httpClient,
		Logger:         log.Default(),
	}
}

func newConfig(opts []Option) *Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = httpClient
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return cfg
}

// ErrEmptySource is returned when a dataset location is blank.
var ErrEmptySource = errors.New("empty dataset source")

// Dataset is one immutable load of both documents.
type Dataset struct {
	ID       string
	LoadedAt time.Time
	Records  []Record
	Partners []PartnerGroup
	Index    *PartnerIndex

	config *Config
}

// document is the envelope shared by both datasets.
type document struct {
	Elements []json.RawMessage `json:"elements"`
}

// Load fetches the shop and partner documents concurrently and returns once
// both are decoded. The first failure cancels the other fetch.
//
//	d, err := vracmap.Load(ctx, vracmap.WithShopsSource("https://example.org/cache_data.json"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rep := d.Process()
func Load(ctx context.Context, opts ...Option) (*Dataset, error) {
	cfg := newConfig(opts)

	var (
		records  []Record
		partners []PartnerGroup
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = loadShops(gctx, cfg)
		if err != nil {
			return fmt.Errorf("loading shops from %s: %w", cfg.ShopsSource, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		partners, err = loadPartners(gctx, cfg)
		if err != nil {
			return fmt.Errorf("loading partners from %s: %w", cfg.PartnersSource, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dataset{
		ID:       uuid.NewString(),
		LoadedAt: time.Now().UTC(),
		Records:  records,
		Partners: partners,
		Index:    NewPartnerIndex(partners),
		config:   cfg,
	}, nil
}

// NewDataset wraps already decoded records and partner groups.
func NewDataset(records []Record, partners []PartnerGroup, opts ...Option) *Dataset {
	return &Dataset{
		ID:       uuid.NewString(),
		LoadedAt: time.Now().UTC(),
		Records:  records,
		Partners: partners,
		Index:    NewPartnerIndex(partners),
		config:   newConfig(opts),
	}
}

// Pipeline returns a pipeline bound to the dataset's partner index.
func (d *Dataset) Pipeline() *Pipeline {
	return NewPipeline(d.Index, d.config.Unclassified, d.config.Logger)
}

// Process runs the whole shop dataset through the pipeline.
func (d *Dataset) Process() Report {
	return d.Pipeline().Process(d.Records)
}

func loadShops(ctx context.Context, cfg *Config) ([]Record, error) {
	doc, err := readDocument(ctx, cfg, cfg.ShopsSource)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(doc.Elements))
	for i, raw := range doc.Elements {
		var r Record
		if err := json.Unmarshal(raw, &r); err != nil {
			cfg.Logger.Printf("warning: skipping shop element %d: %v", i, err)
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func loadPartners(ctx context.Context, cfg *Config) ([]PartnerGroup, error) {
	doc, err := readDocument(ctx, cfg, cfg.PartnersSource)
	if err != nil {
		return nil, err
	}
	groups := make([]PartnerGroup, 0, len(doc.Elements))
	for i, raw := range doc.Elements {
		var pg PartnerGroup
		if err := json.Unmarshal(raw, &pg); err != nil {
			cfg.Logger.Printf("warning: skipping partner group %d: %v", i, err)
			continue
		}
		groups = append(groups, pg)
	}
	return groups, nil
}

func readDocument(ctx context.Context, cfg *Config, src string) (*document, error) {
	r, closeFn, err := openSource(ctx, cfg, src)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &doc, nil
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// cachePath is where a URL source is kept inside the cache directory. The
// file name is prefixed with a key derived from the whole URL, so sources
// sharing a basename get distinct files; the basename keeps the extension
// used to pick a decompressor.
func cachePath(cacheDir, src string) string {
	name := filepath.Base(strings.SplitN(src, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = "dataset.json"
	}
	key := strings.ReplaceAll(uuid.NewSHA1(uuid.NameSpaceURL, []byte(src)).String(), "-", "")[:16]
	return filepath.Join(cacheDir, key+"-"+name)
}

// openSource opens a dataset for reading. URL sources are read from the cache
// directory when present there, and downloaded into it otherwise.
func openSource(ctx context.Context, cfg *Config, src string) (io.Reader, func() error, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil, ErrEmptySource
	}

	if !isURL(src) {
		return openOptionallyCompressedFile(src)
	}

	if cfg.CacheDir == "" {
		body, err := fetch(ctx, cfg.HTTPClient, src)
		if err != nil {
			return nil, nil, err
		}
		r, err := decompress(src, body)
		if err != nil {
			body.Close()
			return nil, nil, err
		}
		return r, body.Close, nil
	}

	local := cachePath(cfg.CacheDir, src)
	if _, err := os.Stat(local); err != nil {
		if err := downloadDataSet(ctx, cfg, src, local); err != nil {
			return nil, nil, err
		}
	}
	return openOptionallyCompressedFile(local)
}

// RefreshCache downloads every URL source into the cache directory again,
// replacing the cached copies. Local sources are left alone.
func RefreshCache(ctx context.Context, opts ...Option) error {
	cfg := newConfig(opts)
	if cfg.CacheDir == "" {
		return errors.New("refreshing cache: no cache directory configured")
	}
	for _, src := range []string{cfg.ShopsSource, cfg.PartnersSource} {
		if !isURL(src) {
			cfg.Logger.Printf("info: %s is a local source, not refreshed", src)
			continue
		}
		if err := downloadDataSet(ctx, cfg, src, cachePath(cfg.CacheDir, src)); err != nil {
			return err
		}
		cfg.Logger.Printf("info: refreshed %s", src)
	}
	return nil
}

func downloadDataSet(ctx context.Context, cfg *Config, src, local string) error {
	if err := os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := downloadFile(ctx, cfg.HTTPClient, src, local); err != nil {
		return fmt.Errorf("downloading %s: %w", src, err)
	}
	return nil
}

func fetch(ctx context.Context, hc *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP GET %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// downloadFile writes url to path through a temporary file so that a failed
// download never leaves a partial dataset behind.
func downloadFile(ctx context.Context, hc *http.Client, url, path string) error {
	body, err := fetch(ctx, hc, url)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", tmp, err)
	}

	success := false
	defer func() {
		if !success {
			out.Close()
			os.Remove(tmp)
		}
	}()

	if _, err := io.Copy(out, body); err != nil {
		return fmt.Errorf("writing file %s: %w", tmp, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	success = true
	return nil
}

// openOptionallyCompressedFile opens a local dataset, decompressing .bz2 and
// .gz files on the fly.
func openOptionallyCompressedFile(path string) (io.Reader, func() error, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	r, err := decompress(path, fh)
	if err != nil {
		fh.Close()
		return nil, nil, err
	}
	return r, fh.Close, nil
}

func decompress(name string, r io.Reader) (io.Reader, error) {
	switch {
	case strings.HasSuffix(name, ".bz2"):
		return bzip2.NewReader(r), nil
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader for %s: %w", name, err)
		}
		return zr, nil
	default:
		return r, nil
	}
}
