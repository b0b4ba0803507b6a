package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/heliodyne/pulseview/blockcache"
	"github.com/heliodyne/pulseview/cache"
	"github.com/heliodyne/pulseview/cli/config"
	"github.com/heliodyne/pulseview/iox"
	"github.com/heliodyne/pulseview/log"
	"github.com/heliodyne/pulseview/metrics"
	"github.com/heliodyne/pulseview/orchestrator"
	"github.com/heliodyne/pulseview/remote"
	"github.com/heliodyne/pulseview/sched"
	"github.com/heliodyne/pulseview/types"
	"github.com/heliodyne/pulseview/viewstate"
)

// Session is everything one command invocation needs: logging, metrics,
// the scheduler, the fetch pipeline, and the orchestrator on top.
type Session struct {
	Meta      *log.SessionMeta
	Logger    *log.Logger
	Collector *metrics.Collector
	Bridge    sched.Bridge
	Client    remote.Client
	Cache     *cache.Cache
	Orch      *orchestrator.Orchestrator

	store blockcache.Store
}

// Close shuts the session down. Pending fetches settle with a cancelled
// context.
func (s *Session) Close() {
	s.Orch.Close()
	s.Bridge.Close()
	if s.store != nil {
		iox.DiscardErr(s.store.Close)
	}
}

// loadConfig reads --config when given, otherwise returns an empty config.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// newSession builds the full pipeline from config and flags. Flags win
// over config values.
func newSession(c *cli.Context, cfg *config.Config) (*Session, error) {
	meta := log.NewSessionMeta("native", serverURL(c, cfg))
	logger := log.NewLogger(meta)
	collector := metrics.NewCollector(meta.SessionID, meta.Target)

	client, err := buildClient(c, cfg, logger, collector)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(c, cfg)
	if err != nil {
		return nil, err
	}
	if store != nil {
		client = blockcache.NewCachingClient(client, store, logger, collector)
	}

	workers := c.Int("workers")
	if workers == 0 {
		workers = cfg.Workers
	}
	bridge := sched.NewNative(sched.NativeConfig{Workers: workers})

	dataCache := cache.New(bridge, logger, collector)
	orch := orchestrator.New(dataCache, orchestrator.FetchPipeline(client, collector), logger, collector)

	return &Session{
		Meta:      meta,
		Logger:    logger,
		Collector: collector,
		Bridge:    bridge,
		Client:    client,
		Cache:     dataCache,
		Orch:      orch,
		store:     store,
	}, nil
}

func serverURL(c *cli.Context, cfg *config.Config) string {
	if s := c.String("server"); s != "" {
		return s
	}
	return cfg.Server.URL
}

// buildClient selects the fetch backend: S3 when a bucket is configured,
// the HTTP processing server otherwise.
func buildClient(c *cli.Context, cfg *config.Config, logger *log.Logger, collector *metrics.Collector) (remote.Client, error) {
	bucket := c.String("s3-bucket")
	if bucket == "" && cfg.Source.Backend == "s3" {
		bucket = cfg.Source.Bucket
	}
	if bucket != "" {
		s3cfg := remote.S3Config{
			Bucket:       bucket,
			Prefix:       firstNonEmpty(c.String("s3-prefix"), cfg.Source.Prefix),
			Region:       firstNonEmpty(c.String("s3-region"), cfg.Source.Region),
			Endpoint:     firstNonEmpty(c.String("s3-endpoint"), cfg.Source.Endpoint),
			UsePathStyle: cfg.Source.S3PathStyle,
		}
		return remote.NewS3Client(c.Context, s3cfg, collector)
	}

	url := serverURL(c, cfg)
	if url == "" {
		return nil, fmt.Errorf("no data source: set --server, --s3-bucket, or a config file")
	}
	return remote.NewHTTPClient(remote.HTTPConfig{
		BaseURL:   url,
		Timeout:   cfg.Server.Timeout.Duration,
		Logger:    logger,
		Collector: collector,
	})
}

// buildStore creates the persistent block cache, or nil when disabled.
func buildStore(c *cli.Context, cfg *config.Config) (blockcache.Store, error) {
	if redisURL := firstNonEmpty(c.String("cache-redis"), cfg.Cache.RedisURL); redisURL != "" && cfg.Cache.Backend != "none" {
		return blockcache.NewRedisStore(blockcache.RedisConfig{
			URL: redisURL,
			TTL: cfg.Cache.RedisTTL.Duration,
		})
	}
	if dir := firstNonEmpty(c.String("cache-dir"), cfg.Cache.Directory); dir != "" && cfg.Cache.Backend != "none" {
		return blockcache.NewFSStore(dir)
	}
	return nil, nil
}

// viewFromInputs assembles the view state: defaults, then config, then
// --state, then individual flags.
func viewFromInputs(c *cli.Context, cfg *config.Config) (types.ViewState, error) {
	v := types.DefaultViewState()

	applyConfigView(&v, cfg)

	if query := c.String("state"); query != "" {
		parsed, err := viewstate.Deserialize(query)
		if err != nil {
			return types.ViewState{}, fmt.Errorf("invalid --state: %w", err)
		}
		v = parsed
	}

	if c.IsSet("dataset") {
		v.Dataset = c.String("dataset")
	}
	if c.IsSet("channel") {
		v.Channels = c.IntSlice("channel")
	}
	if c.IsSet("from") {
		v.FromNs = c.Int64("from")
	}
	if c.IsSet("to") {
		v.ToNs = c.Int64("to")
	}
	if c.IsSet("mode") {
		mode, err := types.ParsePlotMode(c.String("mode"))
		if err != nil {
			return types.ViewState{}, err
		}
		v.Mode = mode
	}
	if c.IsSet("scale") {
		scale, err := types.ParseScale(c.String("scale"))
		if err != nil {
			return types.ViewState{}, err
		}
		v.Scale = scale
	}
	if c.IsSet("bins") {
		v.Bins = c.Int("bins")
	}
	if c.IsSet("kev") {
		v.Options.ConvertToKeV = c.Bool("kev")
	}
	if c.IsSet("dead-time") {
		v.Options.DeadTimeNs = c.Duration("dead-time").Nanoseconds()
	}

	v.Normalize()
	if v.Dataset == "" {
		return types.ViewState{}, fmt.Errorf("a dataset is required: set --dataset, --state, or view.dataset in the config")
	}
	return v, nil
}

func applyConfigView(v *types.ViewState, cfg *config.Config) {
	if cfg.View.Dataset != "" {
		v.Dataset = cfg.View.Dataset
	}
	if len(cfg.View.Channels) > 0 {
		v.Channels = cfg.View.Channels
	}
	if cfg.View.Mode != "" {
		if mode, err := types.ParsePlotMode(cfg.View.Mode); err == nil {
			v.Mode = mode
		}
	}
	if cfg.View.Scale != "" {
		if scale, err := types.ParseScale(cfg.View.Scale); err == nil {
			v.Scale = scale
		}
	}
	if cfg.View.Bins > 0 {
		v.Bins = cfg.View.Bins
	}
	if cfg.View.KeV {
		v.Options.ConvertToKeV = true
	}
	if cfg.View.DeadTime.Duration > 0 {
		v.Options.DeadTimeNs = cfg.View.DeadTime.Duration.Nanoseconds()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// subscribeChannel bridges orchestrator publishes into a channel for
// Bubble Tea and one-shot commands. The newest snapshot wins when the
// consumer falls behind.
func subscribeChannel(o *orchestrator.Orchestrator) <-chan orchestrator.Snapshot {
	ch := make(chan orchestrator.Snapshot, 16)
	o.Subscribe(func(s orchestrator.Snapshot) {
		for {
			select {
			case ch <- s:
				return
			default:
				select {
				case <-ch:
				default:
				}
			}
		}
	})
	return ch
}

// awaitSnapshot blocks until the orchestrator leaves the fetching phase or
// the timeout elapses.
func awaitSnapshot(updates <-chan orchestrator.Snapshot, timeout time.Duration) (orchestrator.Snapshot, error) {
	deadline := time.After(timeout)
	for {
		select {
		case snap := <-updates:
			if snap.Phase == orchestrator.PhaseDisplaying || snap.Phase == orchestrator.PhaseErrored {
				return snap, nil
			}
		case <-deadline:
			return orchestrator.Snapshot{}, fmt.Errorf("timed out waiting for data")
		}
	}
}
