// Package servecmder provides the serve command for running the mnemo API server.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/mnemo/api"
	cacheutils "github.com/papercomputeco/mnemo/pkg/cache/utils"
	"github.com/papercomputeco/mnemo/pkg/chunk"
	"github.com/papercomputeco/mnemo/pkg/config"
	"github.com/papercomputeco/mnemo/pkg/documents"
	"github.com/papercomputeco/mnemo/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/mnemo/pkg/embeddings/utils"
	"github.com/papercomputeco/mnemo/pkg/eventstream"
	kafkastream "github.com/papercomputeco/mnemo/pkg/eventstream/kafka"
	nopstream "github.com/papercomputeco/mnemo/pkg/eventstream/nop"
	"github.com/papercomputeco/mnemo/pkg/logger"
	"github.com/papercomputeco/mnemo/pkg/retrieval"
	"github.com/papercomputeco/mnemo/pkg/vector"
	vectorutils "github.com/papercomputeco/mnemo/pkg/vector/utils"
)

type serveCommander struct {
	listen string

	vectorProvider   string
	vectorHost       string
	vectorPort       int
	vectorAPIKey     string
	vectorCollection string
	sqlitePath       string

	embeddingProvider string
	embeddingTarget   string
	embeddingModel    string
	embeddingDims     uint

	cacheProvider string
	cacheAddr     string
	cachePassword string
	cacheDB       int
	cacheTTL      int

	chunkSize    int
	chunkOverlap int

	streamProvider string
	streamBrokers  string
	streamTopic    string

	enableMCP bool
	debug     bool
	logger    *slog.Logger
}

// serveFlags is the flag registry for the serve command. Flag names,
// shorthands, and viper keys live here so the viper binding in PreRunE
// cannot drift from the flag registration.
var serveFlags = config.FlagSet{
	config.FlagListen: {
		Name: "listen", Shorthand: "l", ViperKey: "server.listen",
		Description: "Address for the API server to listen on",
	},
	config.FlagVectorStoreProv: {
		Name: "vector-store-provider", ViperKey: "vector_store.provider",
		Description: "Vector store provider (qdrant, sqlite)",
	},
	config.FlagVectorStoreHost: {
		Name: "vector-store-host", ViperKey: "vector_store.host",
		Description: "Vector store host (qdrant)",
	},
	config.FlagVectorStorePort: {
		Name: "vector-store-port", ViperKey: "vector_store.port",
		Description: "Vector store port (qdrant)",
	},
	config.FlagVectorStoreColl: {
		Name: "vector-store-collection", ViperKey: "vector_store.collection",
		Description: "Vector store collection name",
	},
	config.FlagSQLite: {
		Name: "sqlite", Shorthand: "s", ViperKey: "vector_store.sqlite_path",
		Description: "Path to the SQLite vector database (sqlite provider)",
	},
	config.FlagEmbeddingProv: {
		Name: "embedding-provider", ViperKey: "embedding.provider",
		Description: "Embedding provider (ollama)",
	},
	config.FlagEmbeddingTgt: {
		Name: "embedding-target", ViperKey: "embedding.target",
		Description: "Embedding provider URL",
	},
	config.FlagEmbeddingModel: {
		Name: "embedding-model", ViperKey: "embedding.model",
		Description: "Embedding model name",
	},
	config.FlagEmbeddingDims: {
		Name: "embedding-dimensions", ViperKey: "embedding.dimensions",
		Description: "Embedding vector dimensions",
	},
	config.FlagCacheProv: {
		Name: "cache-provider", ViperKey: "cache.provider",
		Description: "Search cache provider (redis, none)",
	},
	config.FlagCacheAddr: {
		Name: "cache-addr", ViperKey: "cache.addr",
		Description: "Cache backend address (redis)",
	},
	config.FlagCacheTTL: {
		Name: "cache-ttl", ViperKey: "cache.ttl_seconds",
		Description: "Cached search result TTL in seconds",
	},
	config.FlagChunkSize: {
		Name: "chunk-size", ViperKey: "chunking.target_size",
		Description: "Target chunk size in characters",
	},
	config.FlagChunkOverlap: {
		Name: "chunk-overlap", ViperKey: "chunking.overlap",
		Description: "Chunk overlap in characters",
	},
	config.FlagStreamProv: {
		Name: "eventstream-provider", ViperKey: "eventstream.provider",
		Description: "Document event stream provider (kafka, none)",
	},
	config.FlagStreamBrokers: {
		Name: "eventstream-brokers", ViperKey: "eventstream.brokers",
		Description: "Comma-separated Kafka broker addresses",
	},
	config.FlagStreamTopic: {
		Name: "eventstream-topic", ViperKey: "eventstream.topic",
		Description: "Kafka topic for document lifecycle events",
	},
}

// serveBoundKeys are the registry keys bound into viper in PreRunE.
var serveBoundKeys = []string{
	config.FlagListen,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreHost,
	config.FlagVectorStorePort,
	config.FlagVectorStoreColl,
	config.FlagSQLite,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagCacheProv,
	config.FlagCacheAddr,
	config.FlagCacheTTL,
	config.FlagChunkSize,
	config.FlagChunkOverlap,
	config.FlagStreamProv,
	config.FlagStreamBrokers,
	config.FlagStreamTopic,
}

const serveLongDesc string = `Run the mnemo API server.

The server exposes document upload, deletion, semantic search, health,
and metrics endpoints, plus an MCP surface for agent integration.

Configuration follows the usual precedence: CLI flags override MNEMO_*
environment variables, which override .mnemo/config.toml, which overrides
built-in defaults.

Examples:
  mnemo serve
  mnemo serve --listen :9000 --sqlite ./mnemo.db
  mnemo serve --vector-store-provider qdrant --vector-store-host localhost
  mnemo serve --cache-provider redis --cache-addr localhost:6379`

const serveShortDesc string = "Run the mnemo API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, serveFlags, serveBoundKeys)
			cmder.applyViper(v)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreHost, &cmder.vectorHost)
	config.AddIntFlag(cmd, serveFlags, config.FlagVectorStorePort, &cmder.vectorPort)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreColl, &cmder.vectorCollection)
	config.AddStringFlag(cmd, serveFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingProv, &cmder.embeddingProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, serveFlags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, serveFlags, config.FlagCacheProv, &cmder.cacheProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagCacheAddr, &cmder.cacheAddr)
	config.AddIntFlag(cmd, serveFlags, config.FlagCacheTTL, &cmder.cacheTTL)
	config.AddIntFlag(cmd, serveFlags, config.FlagChunkSize, &cmder.chunkSize)
	config.AddIntFlag(cmd, serveFlags, config.FlagChunkOverlap, &cmder.chunkOverlap)
	config.AddStringFlag(cmd, serveFlags, config.FlagStreamProv, &cmder.streamProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagStreamBrokers, &cmder.streamBrokers)
	config.AddStringFlag(cmd, serveFlags, config.FlagStreamTopic, &cmder.streamTopic)

	cmd.Flags().BoolVar(&cmder.enableMCP, "mcp", true, "Expose the MCP endpoint at /mcp")

	return cmd
}

// applyViper reads the effective configuration out of viper after flag
// binding, so every field reflects flag > env > file > default precedence.
func (c *serveCommander) applyViper(v *viper.Viper) {
	c.listen = v.GetString("server.listen")

	c.vectorProvider = v.GetString("vector_store.provider")
	c.vectorHost = v.GetString("vector_store.host")
	c.vectorPort = v.GetInt("vector_store.port")
	c.vectorAPIKey = v.GetString("vector_store.api_key")
	c.vectorCollection = v.GetString("vector_store.collection")
	c.sqlitePath = v.GetString("vector_store.sqlite_path")

	c.embeddingProvider = v.GetString("embedding.provider")
	c.embeddingTarget = v.GetString("embedding.target")
	c.embeddingModel = v.GetString("embedding.model")
	c.embeddingDims = v.GetUint("embedding.dimensions")

	c.cacheProvider = v.GetString("cache.provider")
	c.cacheAddr = v.GetString("cache.addr")
	c.cachePassword = v.GetString("cache.password")
	c.cacheDB = v.GetInt("cache.db")
	c.cacheTTL = v.GetInt("cache.ttl_seconds")

	c.chunkSize = v.GetInt("chunking.target_size")
	c.chunkOverlap = v.GetInt("chunking.overlap")

	c.streamProvider = v.GetString("eventstream.provider")
	c.streamBrokers = v.GetString("eventstream.brokers")
	c.streamTopic = v.GetString("eventstream.topic")
}

func (c *serveCommander) run(ctx context.Context) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
	)

	embedder, err := c.newEmbedder()
	if err != nil {
		return err
	}
	defer embedder.Close()

	driver, err := c.newVectorDriver(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	searchCache, err := cacheutils.NewCache(&cacheutils.NewCacheOpts{
		ProviderType: c.cacheProvider,
		Addr:         c.cacheAddr,
		Password:     c.cachePassword,
		DB:           c.cacheDB,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}
	defer searchCache.Close()

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	chunker, err := chunk.NewChunker(c.chunkSize, c.chunkOverlap)
	if err != nil {
		return fmt.Errorf("creating chunker: %w", err)
	}

	orch, err := retrieval.NewOrchestrator(embedder, driver, searchCache, retrieval.Config{
		TTL: time.Duration(c.cacheTTL) * time.Second,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating orchestrator: %w", err)
	}

	manager, err := documents.NewManager(chunker, orch, driver, publisher, c.logger)
	if err != nil {
		return fmt.Errorf("creating document manager: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr: c.listen,
		EnableMCP:  c.enableMCP,
	}, manager, orch, embedder, driver, searchCache, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("starting mnemo server",
		"listen", c.listen,
		"vector_store", c.vectorProvider,
		"embedding_model", c.embeddingModel,
		"cache", c.cacheProvider,
		"eventstream", c.streamProvider,
		"mcp", c.enableMCP,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

func (c *serveCommander) newEmbedder() (embeddings.Embedder, error) {
	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.embeddingProvider,
		TargetURL:    c.embeddingTarget,
		Model:        c.embeddingModel,
		Dimensions:   c.embeddingDims,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	c.logger.Info("using embedding provider",
		"provider", c.embeddingProvider,
		"model", c.embeddingModel,
		"dimensions", c.embeddingDims,
	)
	return embedder, nil
}

func (c *serveCommander) newVectorDriver(ctx context.Context) (vector.Driver, error) {
	driver, err := vectorutils.NewDriver(ctx, &vectorutils.NewDriverOpts{
		ProviderType:   c.vectorProvider,
		Host:           c.vectorHost,
		Port:           c.vectorPort,
		APIKey:         c.vectorAPIKey,
		CollectionName: c.vectorCollection,
		DBPath:         c.sqlitePath,
		Dimensions:     c.embeddingDims,
	}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating vector driver: %w", err)
	}

	c.logger.Info("using vector store", "provider", c.vectorProvider)
	return driver, nil
}

func (c *serveCommander) newPublisher() (eventstream.Publisher, error) {
	switch c.streamProvider {
	case "kafka":
		brokers := splitBrokers(c.streamBrokers)
		publisher, err := kafkastream.NewPublisher(kafkastream.Config{
			Brokers: brokers,
			Topic:   c.streamTopic,
		}, c.logger)
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		c.logger.Info("publishing document events", "brokers", brokers, "topic", c.streamTopic)
		return publisher, nil
	case "none", "":
		return nopstream.NewPublisher(), nil
	default:
		return nil, fmt.Errorf("unsupported eventstream provider: %s", c.streamProvider)
	}
}

// splitBrokers parses the comma-separated eventstream.brokers config value
// into a broker address list, dropping empty entries.
func splitBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
