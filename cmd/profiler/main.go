package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand" //nolint:gosec // intentional use for reproducible benchmarks
	"net/http"
	_ "net/http/pprof" //nolint:gosec // intentional profiling endpoint
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/meigma/uasset"
	"github.com/meigma/uasset/bundle"
	"github.com/meigma/uasset/bundle/cache/disk"
	"github.com/meigma/uasset/exports"
	"github.com/meigma/uasset/internal/testutil"
	"github.com/meigma/uasset/properties"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

const cacheNone = "none"

type config struct {
	mode            string
	packages        int
	exports         int
	properties      int
	dirCount        int
	engine          string
	compression     string
	dataURL         string
	dataHTTPLatency time.Duration
	dataHTTPBPS     int64
	duration        time.Duration
	iterations      int
	pprofAddr       string
	cpuProfile      string
	memProfile      string
	traceFile       string
	cache           string
	cacheDir        string
	prefix          string
	workers         int
	readRandom      bool
	tempDir         string
	keepTemp        bool
	randomSeed      int64
}

//nolint:unused // sink variables prevent compiler optimizations in profiling
var (
	sinkBytes []byte
	sinkAsset *uasset.Asset
	sinkEntry bundle.Entry
	sinkCount int
)

//nolint:gocognit,gocyclo // main function complexity is acceptable for CLI tool
func main() {
	cfg := parseFlags()
	engine, err := version.ParseEngineVersion(cfg.engine)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.pprofAddr != "" {
		go func() {
			log.Printf("pprof listening on %s", cfg.pprofAddr)
			//nolint:gosec // intentional pprof server without timeouts for profiling
			if err := http.ListenAndServe(cfg.pprofAddr, nil); err != nil {
				log.Printf("pprof server error: %v", err)
			}
		}()
	}

	dir, cleanup, err := setupTempDir(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if cleanup != nil {
		defer cleanup() //nolint:errcheck // cleanup errors are non-fatal in profiler
	}

	paths, err := makePackages(dir, cfg, engine)
	if err != nil {
		log.Fatal(err) //nolint:gocritic // exitAfterDefer is intentional - cleanup is best-effort
	}

	b, source, cleanupBundle, err := buildBundle(dir, cfg)
	if err != nil {
		log.Fatal(err)
	}
	if cleanupBundle != nil {
		defer cleanupBundle()
	}

	if cfg.cpuProfile != "" {
		cpuFile, cpuErr := os.Create(cfg.cpuProfile)
		if cpuErr != nil {
			log.Fatal(cpuErr)
		}
		if cpuErr = pprof.StartCPUProfile(cpuFile); cpuErr != nil {
			log.Fatal(cpuErr)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		}()
	}

	if cfg.traceFile != "" {
		traceFile, traceErr := os.Create(cfg.traceFile)
		if traceErr != nil {
			log.Fatal(traceErr)
		}
		if traceErr = trace.Start(traceFile); traceErr != nil {
			log.Fatal(traceErr)
		}
		defer func() {
			trace.Stop()
			_ = traceFile.Close()
		}()
	}

	stats, err := runProfile(cfg, b, source, paths, dir)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile != "" {
		runtime.GC()
		f, err := os.Create(cfg.memProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
		_ = f.Close()
	}

	printStats(cfg, stats)
}

type profileStats struct {
	ops     int
	bytes   int64
	elapsed time.Duration
}

func printStats(cfg config, stats profileStats) { //nolint:gocritic // hugeParam acceptable for CLI tool
	seconds := stats.elapsed.Seconds()
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Mode", "Engine", "Packages", "Ops", "Bytes", "Elapsed", "Ops/s", "MB/s"})
	t.AppendRow(table.Row{
		cfg.mode,
		cfg.engine,
		cfg.packages,
		stats.ops,
		stats.bytes,
		stats.elapsed.Round(time.Millisecond),
		fmt.Sprintf("%.1f", float64(stats.ops)/seconds),
		fmt.Sprintf("%.2f", float64(stats.bytes)/(1024*1024)/seconds),
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AlignHeader: text.AlignCenter},
		{Number: 2, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	t.Render()
}

//nolint:gocognit,gocyclo,gocritic // complexity is inherent to multi-mode profiler dispatch; hugeParam acceptable for profiler
func runProfile(cfg config, b *bundle.Bundle, source bundle.ByteSource, paths []string, rootDir string) (profileStats, error) {
	start := time.Now()
	ops := 0
	var byteCount int64

	shouldContinue := func() bool {
		if cfg.iterations > 0 {
			return ops < cfg.iterations
		}
		return time.Since(start) < cfg.duration
	}

	rng := rand.New(rand.NewSource(cfg.randomSeed)) //nolint:gosec // intentional for reproducible benchmarks

	switch cfg.mode {
	case "decode":
		inputs, err := loadPackages(b, paths)
		if err != nil {
			return profileStats{}, err
		}
		start = time.Now()
		for shouldContinue() {
			in := inputs[pickIndex(len(inputs), ops, rng, cfg.readRandom)]
			a, err := uasset.Decode(in.header, uasset.WithExportData(in.data))
			if err != nil {
				return profileStats{}, err
			}
			sinkAsset = a
			byteCount += int64(len(in.header) + len(in.data))
			ops++
		}

	case "decode-header":
		inputs, err := loadPackages(b, paths)
		if err != nil {
			return profileStats{}, err
		}
		start = time.Now()
		for shouldContinue() {
			in := inputs[pickIndex(len(inputs), ops, rng, cfg.readRandom)]
			a, err := uasset.Decode(in.header, uasset.WithHeaderOnly())
			if err != nil {
				return profileStats{}, err
			}
			sinkAsset = a
			byteCount += int64(len(in.header))
			ops++
		}

	case "encode":
		inputs, err := loadPackages(b, paths)
		if err != nil {
			return profileStats{}, err
		}
		assets := make([]*uasset.Asset, len(inputs))
		for i, in := range inputs {
			if assets[i], err = uasset.Decode(in.header, uasset.WithExportData(in.data)); err != nil {
				return profileStats{}, err
			}
		}
		start = time.Now()
		for shouldContinue() {
			out, err := assets[pickIndex(len(assets), ops, rng, cfg.readRandom)].Encode()
			if err != nil {
				return profileStats{}, err
			}
			sinkBytes = out
			byteCount += int64(len(out))
			ops++
		}

	case "roundtrip":
		inputs, err := loadPackages(b, paths)
		if err != nil {
			return profileStats{}, err
		}
		start = time.Now()
		for shouldContinue() {
			in := inputs[pickIndex(len(inputs), ops, rng, cfg.readRandom)]
			a, err := uasset.Decode(in.header, uasset.WithExportData(in.data))
			if err != nil {
				return profileStats{}, err
			}
			header, data, err := a.EncodeSplit()
			if err != nil {
				return profileStats{}, err
			}
			if !bytes.Equal(header, in.header) || !bytes.Equal(data, in.data) {
				return profileStats{}, fmt.Errorf("round trip of %s changed bytes", in.path)
			}
			byteCount += int64(len(header) + len(data))
			ops++
		}

	case "container-decode":
		for shouldContinue() {
			path := paths[pickIndex(len(paths), ops, rng, cfg.readRandom)]
			a, err := uasset.DecodeFromContainer(b, path)
			if err != nil {
				return profileStats{}, err
			}
			sinkAsset = a
			ops++
		}

	case "decode-all":
		prefix := cfg.prefix
		for shouldContinue() {
			decoded, err := b.DecodeAll(context.Background(), prefix)
			if err != nil {
				return profileStats{}, err
			}
			if len(decoded) == 0 {
				return profileStats{}, fmt.Errorf("no packages under prefix %q", prefix)
			}
			sinkCount = len(decoded)
			ops++
		}

	case "readfile":
		reader := b
		if cfg.cache != cacheNone {
			c, cleanup, err := newCache(cfg, rootDir)
			if err != nil {
				return profileStats{}, err
			}
			defer cleanup() //nolint:errcheck // cleanup errors are non-fatal in profiler
			cached, err := bundle.New(b.IndexData(), source, bundle.WithCache(c))
			if err != nil {
				return profileStats{}, err
			}
			reader = cached
		}
		for shouldContinue() {
			path := paths[pickIndex(len(paths), ops, rng, cfg.readRandom)]
			content, err := reader.ReadFile(path)
			if err != nil {
				return profileStats{}, err
			}
			sinkBytes = content
			byteCount += int64(len(content))
			ops++
		}

	case "index-lookup":
		for shouldContinue() {
			path := paths[pickIndex(len(paths), ops, rng, cfg.readRandom)]
			e, ok := b.Entry(path)
			if !ok {
				return profileStats{}, fmt.Errorf("missing entry for %q", path)
			}
			sinkEntry = e
			ops++
		}

	case "entries-with-prefix":
		for shouldContinue() {
			count := 0
			for e := range b.EntriesWithPrefix(cfg.prefix) {
				sinkEntry = e
				count++
			}
			if count == 0 {
				return profileStats{}, fmt.Errorf("expected at least one entry for prefix %q", cfg.prefix)
			}
			sinkCount = count
			ops++
		}

	case "create":
		var indexBuf, dataBuf bytes.Buffer
		opts := createOptions(cfg)
		for shouldContinue() {
			indexBuf.Reset()
			dataBuf.Reset()
			if err := bundle.Create(context.Background(), filepath.Join(rootDir, "src"), &indexBuf, &dataBuf, opts...); err != nil {
				return profileStats{}, err
			}
			byteCount += int64(dataBuf.Len())
			ops++
		}

	default:
		return profileStats{}, fmt.Errorf("unknown mode: %s", cfg.mode)
	}

	return profileStats{
		ops:     ops,
		bytes:   byteCount,
		elapsed: time.Since(start),
	}, nil
}

func parseFlags() config {
	var cfg config
	var dataHTTPBPS string
	flag.StringVar(&cfg.mode, "mode", "decode", "mode: decode, decode-header, encode, roundtrip, container-decode, decode-all, readfile, index-lookup, entries-with-prefix, create")
	flag.IntVar(&cfg.packages, "packages", 256, "number of packages")
	flag.IntVar(&cfg.exports, "exports", 16, "extra exports per package")
	flag.IntVar(&cfg.properties, "properties", 32, "tagged properties per extra export")
	flag.IntVar(&cfg.dirCount, "dir-count", 8, "number of directories")
	flag.StringVar(&cfg.engine, "engine", version.UE4_27.String(), "engine version packages are written for")
	flag.StringVar(&cfg.compression, "compression", "zstd", "compression: none or zstd")
	flag.StringVar(&cfg.dataURL, "data-url", "", "HTTP data source URL (use \"local\" to serve generated data)")
	flag.DurationVar(&cfg.dataHTTPLatency, "data-http-latency", 0, "per-request latency for HTTP data source")
	flag.StringVar(&dataHTTPBPS, "data-http-bps", "", "bytes/sec throttle for HTTP data source (e.g. 10MBps)")
	flag.DurationVar(&cfg.duration, "duration", 10*time.Second, "duration to run (ignored if iterations > 0)")
	flag.IntVar(&cfg.iterations, "iterations", 0, "number of iterations to run")
	flag.StringVar(&cfg.pprofAddr, "pprof-addr", "", "pprof listen address (e.g. :6060)")
	flag.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	flag.StringVar(&cfg.memProfile, "memprofile", "", "write heap profile to file")
	flag.StringVar(&cfg.traceFile, "trace", "", "write trace to file")
	flag.StringVar(&cfg.cache, "cache", cacheNone, "cache for readfile: disk, none")
	flag.StringVar(&cfg.cacheDir, "cache-dir", "", "cache directory (disk cache only)")
	flag.StringVar(&cfg.prefix, "prefix", "Game/Dir00/", "prefix for decode-all and entries-with-prefix modes")
	flag.IntVar(&cfg.workers, "workers", bundle.DefaultDecodeConcurrency, "decode-all concurrency (<1 unlimited)")
	flag.BoolVar(&cfg.readRandom, "read-random", true, "randomize package selection")
	flag.StringVar(&cfg.tempDir, "temp-dir", "", "directory to use for dataset")
	flag.BoolVar(&cfg.keepTemp, "keep-temp", false, "keep temp dir after run")
	flag.Int64Var(&cfg.randomSeed, "seed", 1, "random seed")
	flag.Parse()
	if dataHTTPBPS != "" {
		bps, err := parseBytesPerSecond(dataHTTPBPS)
		if err != nil {
			log.Fatalf("data-http-bps: %v", err)
		}
		cfg.dataHTTPBPS = bps
	}
	return cfg
}

func pickIndex(n, idx int, rng *rand.Rand, random bool) int {
	if random {
		return rng.Intn(n)
	}
	return idx % n
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func setupTempDir(cfg config) (string, func() error, error) {
	if cfg.tempDir != "" {
		return cfg.tempDir, nil, os.MkdirAll(cfg.tempDir, 0o755) //nolint:gosec // 0o755 is intentional for profiler temp dirs
	}
	dir, err := os.MkdirTemp("", "uasset-profiler-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() error {
		if cfg.keepTemp {
			return nil
		}
		return os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}

// makePackages writes split packages under dir/src and returns their
// .uasset paths relative to it.
//
//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func makePackages(dir string, cfg config, engine version.EngineVersion) ([]string, error) {
	dirCount := max(cfg.dirCount, 1)
	src := filepath.Join(dir, "src")
	rng := rand.New(rand.NewSource(cfg.randomSeed)) //nolint:gosec // intentional use for reproducible benchmarks

	paths := make([]string, 0, cfg.packages)
	for i := range cfg.packages {
		a := syntheticPackage(engine, i, cfg.exports, cfg.properties, rng)
		header, data, err := a.EncodeSplit()
		if err != nil {
			return nil, fmt.Errorf("package %d: %w", i, err)
		}

		relPath := fmt.Sprintf("Game/Dir%02d/Pkg%05d.uasset", i%dirCount, i)
		fullPath := filepath.Join(src, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil { //nolint:gosec // 0o755 is intentional for profiler
			return nil, err
		}
		if err := os.WriteFile(fullPath, header, 0o644); err != nil { //nolint:gosec // 0o644 is intentional for profiler test files
			return nil, err
		}
		uexp := fullPath[:len(fullPath)-len(".uasset")] + ".uexp"
		if err := os.WriteFile(uexp, data, 0o644); err != nil { //nolint:gosec // 0o644 is intentional for profiler test files
			return nil, err
		}
		paths = append(paths, relPath)
	}
	return paths, nil
}

// syntheticPackage extends the sample package with extra actor exports
// carrying scalar and string properties.
func syntheticPackage(engine version.EngineVersion, n, extraExports, props int, rng *rand.Rand) *uasset.Asset {
	a := testutil.BuildSample(uasset.WithEngineVersion(engine))
	nm := a.NameMap()

	var actor types.PackageIndex
	for i, imp := range a.Imports() {
		if name, err := a.ResolveName(imp.ObjectName); err == nil && name == "Actor" {
			actor = types.ImportIndex(i)
		}
	}

	for e := range extraExports {
		list := &properties.List{}
		for p := range props {
			var v properties.Value
			switch p % 3 {
			case 0:
				v = &properties.IntValue{Value: rng.Int31()}
			case 1:
				v = &properties.FloatValue{Value: rng.Float32()}
			default:
				v = &properties.StrValue{Value: types.NewFString(fmt.Sprintf("value-%d-%d", n, p))}
			}
			list.Properties = append(list.Properties, properties.New(nm, fmt.Sprintf("Field%03d", p), v))
		}
		a.AddExport(&exports.NormalExport{
			BaseExport:     exports.BaseExport{ClassIndex: actor, ObjectName: nm.Name(fmt.Sprintf("Actor_%d", e))},
			Properties:     list,
			GUIDSerialized: true,
		})
	}
	return a
}

type packageBytes struct {
	path   string
	header []byte
	data   []byte
}

func loadPackages(b *bundle.Bundle, paths []string) ([]packageBytes, error) {
	out := make([]packageBytes, 0, len(paths))
	for _, path := range paths {
		header, err := b.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data, err := b.ReadFile(path[:len(path)-len(".uasset")] + ".uexp")
		if err != nil {
			return nil, err
		}
		out = append(out, packageBytes{path: path, header: header, data: data})
	}
	return out, nil
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func createOptions(cfg config) []bundle.CreateOption {
	var opts []bundle.CreateOption
	if c := parseCompression(cfg.compression); c != bundle.CompressionNone {
		opts = append(opts, bundle.CreateWithCompression(c))
	}
	return opts
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func buildBundle(root string, cfg config) (*bundle.Bundle, bundle.ByteSource, func(), error) {
	var indexBuf, dataBuf bytes.Buffer
	if err := bundle.Create(context.Background(), filepath.Join(root, "src"), &indexBuf, &dataBuf, createOptions(cfg)...); err != nil {
		return nil, nil, nil, err
	}
	opts := []bundle.Option{bundle.WithDecodeConcurrency(cfg.workers)}

	var source bundle.ByteSource = testutil.NewMockByteSource(dataBuf.Bytes())
	var cleanup func()
	if cfg.dataURL != "" {
		var err error
		source, cleanup, err = newHTTPSource(cfg, dataBuf.Bytes())
		if err != nil {
			return nil, nil, nil, err
		}
	}
	b, err := bundle.New(indexBuf.Bytes(), source, opts...)
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, nil, nil, err
	}
	return b, source, cleanup, nil
}

func parseCompression(name string) bundle.Compression {
	switch name {
	case "none":
		return bundle.CompressionNone
	case "zstd":
		return bundle.CompressionZstd
	default:
		log.Fatalf("unknown compression: %s", name)
		return bundle.CompressionNone
	}
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func newCache(cfg config, rootDir string) (*disk.Cache, func() error, error) {
	switch cfg.cache {
	case cacheNone:
		return nil, nil, errors.New("cache=none should not create a cache")
	case "disk":
		cacheDir := cfg.cacheDir
		autoDir := false
		if cacheDir == "" {
			base := filepath.Join(rootDir, "cache")
			if err := os.MkdirAll(base, 0o755); err != nil { //nolint:gosec // 0o755 is intentional for profiler
				return nil, nil, err
			}
			dir, err := os.MkdirTemp(base, "run-*")
			if err != nil {
				return nil, nil, err
			}
			cacheDir = dir
			autoDir = true
		}
		c, err := disk.New(cacheDir)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() error {
			if autoDir {
				return os.RemoveAll(cacheDir)
			}
			return nil
		}
		return c, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache: %s", cfg.cache)
	}
}
