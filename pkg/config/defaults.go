package config

const (
	defaultServerListen = ":8081"
	defaultAPITarget    = "http://localhost:8081"

	defaultVectorProvider   = "sqlite"
	defaultVectorHost       = "localhost"
	defaultVectorPort       = 6334
	defaultVectorCollection = "memories"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "embeddinggemma"
	defaultEmbeddingDimensions = 768

	defaultCacheProvider = "none"
	defaultCacheAddr     = "localhost:6379"
	defaultCacheTTL      = 3600

	defaultChunkTargetSize = 1000
	defaultChunkOverlap    = 200

	defaultEventstreamProvider = "none"
	defaultEventstreamTopic    = "mnemo.documents"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultServerListen,
		},
		Client: ClientConfig{
			APITarget: defaultAPITarget,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Host:       defaultVectorHost,
			Port:       defaultVectorPort,
			Collection: defaultVectorCollection,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Cache: CacheConfig{
			Provider:   defaultCacheProvider,
			Addr:       defaultCacheAddr,
			TTLSeconds: defaultCacheTTL,
		},
		Chunking: ChunkingConfig{
			TargetSize: defaultChunkTargetSize,
			Overlap:    defaultChunkOverlap,
		},
		Eventstream: EventstreamConfig{
			Provider: defaultEventstreamProvider,
			Topic:    defaultEventstreamTopic,
		},
	}
}
