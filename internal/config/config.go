package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"OpportunityValidator/internal/domain"
)

const (
	configPathEnv     = "OPPORTUNITY_VALIDATOR_CONFIG"
	providerEnv       = "AGENT_PROVIDER"
	anthropicKeyEnv   = "ANTHROPIC_API_KEY"
	openAIKeyEnv      = "OPENAI_API_KEY"
	modelEnv          = "VALIDATION_MODEL"
	outputDirEnv      = "OPPORTUNITY_OUTPUT_DIR"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
	httpAddrEnv       = "HTTP_ADDR"
	digestIntervalEnv = "DIGEST_INTERVAL"
)

// Agent providers understood by the agent registry.
const (
	ProviderAnthropic = "anthropic"
	ProviderChatGPT   = "chatgpt"
)

const (
	defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"
	defaultAnthropicModel    = "claude-sonnet-4-20250514"
	defaultChatGPTEndpoint   = "https://api.openai.com/v1/chat/completions"
	defaultChatGPTModel      = "gpt-4o-mini"
)

// Config holds high-level settings required across the application.
type Config struct {
	Agent         AgentConfig        `yaml:"agent"`
	Storage       StorageConfig      `yaml:"storage"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
}

// AgentConfig defines how to contact the LLM agent.
type AgentConfig struct {
	Provider     string        `yaml:"provider"`
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	MaxTokens    int           `yaml:"maxTokens"`
	Timeout      time.Duration `yaml:"timeout"`
}

// StorageConfig points at the directory holding opportunities/<name>/.
type StorageConfig struct {
	Root string `yaml:"root"`
}

// DatabaseConfig describes the optional Postgres result history.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	// DigestInterval republishes the recommendation while serving; zero disables it.
	DigestInterval time.Duration `yaml:"digestInterval"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads .env, YAML configuration (if present) and applies environment
// overrides. It never fails; call Validate before using the agent settings.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if fileCfg, err := ReadFile(path); err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindProviderDefaults()

	return cfg
}

// ReadFile parses a YAML configuration file without applying defaults.
func ReadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return fileCfg, nil
}

// Validate fails when the agent cannot be reached with the current settings.
func (c Config) Validate() error {
	switch c.Agent.Provider {
	case ProviderAnthropic, ProviderChatGPT:
	default:
		return fmt.Errorf("%w: unknown agent provider %q", domain.ErrConfiguration, c.Agent.Provider)
	}
	if strings.TrimSpace(c.Agent.APIKey) == "" {
		return fmt.Errorf("%w: %s not found; set it in .env, the environment or pass --api-key",
			domain.ErrConfiguration, keyEnvFor(c.Agent.Provider))
	}
	if c.Agent.Model == "" || c.Agent.Endpoint == "" {
		return fmt.Errorf("%w: agent model and endpoint are required", domain.ErrConfiguration)
	}
	return nil
}

// WithAgentOverrides applies explicit credential/model arguments on top of
// the loaded configuration. Empty values leave the config untouched.
func (c Config) WithAgentOverrides(apiKey, model string) Config {
	if apiKey != "" {
		c.Agent.APIKey = apiKey
	}
	if model != "" {
		c.Agent.Model = model
	}
	return c
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(providerEnv); v != "" {
		c.Agent.Provider = strings.ToLower(v)
	}

	if v := os.Getenv(keyEnvFor(c.Agent.Provider)); v != "" {
		c.Agent.APIKey = v
	}

	if v := os.Getenv(modelEnv); v != "" {
		c.Agent.Model = v
	}

	if v := os.Getenv(outputDirEnv); v != "" {
		c.Storage.Root = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(digestIntervalEnv); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Notifications.DigestInterval = d
		} else {
			log.Printf("config: invalid %s %q: %v", digestIntervalEnv, v, err)
		}
	}
}

func (c *Config) bindProviderDefaults() {
	switch c.Agent.Provider {
	case ProviderChatGPT:
		if c.Agent.Endpoint == "" {
			c.Agent.Endpoint = defaultChatGPTEndpoint
		}
		if c.Agent.Model == "" {
			c.Agent.Model = defaultChatGPTModel
		}
	case ProviderAnthropic:
		if c.Agent.Endpoint == "" {
			c.Agent.Endpoint = defaultAnthropicEndpoint
		}
		if c.Agent.Model == "" {
			c.Agent.Model = defaultAnthropicModel
		}
	}
}

func keyEnvFor(provider string) string {
	if provider == ProviderChatGPT {
		return openAIKeyEnv
	}
	return anthropicKeyEnv
}

func mergeConfig(base, override Config) Config {
	if override.Agent.Provider != "" {
		base.Agent.Provider = strings.ToLower(override.Agent.Provider)
	}
	if override.Agent.Endpoint != "" {
		base.Agent.Endpoint = override.Agent.Endpoint
	}
	if override.Agent.Model != "" {
		base.Agent.Model = override.Agent.Model
	}
	if override.Agent.APIKey != "" {
		base.Agent.APIKey = override.Agent.APIKey
	}
	if override.Agent.SystemPrompt != "" {
		base.Agent.SystemPrompt = override.Agent.SystemPrompt
	}
	if override.Agent.MaxTokens > 0 {
		base.Agent.MaxTokens = override.Agent.MaxTokens
	}
	if override.Agent.Timeout > 0 {
		base.Agent.Timeout = override.Agent.Timeout
	}

	if override.Storage.Root != "" {
		base.Storage.Root = override.Storage.Root
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.DigestInterval > 0 {
		base.Notifications.DigestInterval = override.Notifications.DigestInterval
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Agent: AgentConfig{
			Provider:     ProviderAnthropic,
			MaxTokens:    8192,
			Timeout:      10 * time.Minute,
			SystemPrompt: defaultSystemPrompt,
		},
		Storage:  StorageConfig{Root: "."},
		Logging:  LoggingConfig{Level: "info"},
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{DSN: ""},
	}
}

const defaultSystemPrompt = `You orchestrate business-opportunity validation.
For every opportunity, research where the ideal customers gather, whether they pay for similar tools, how intense the pain is and who already competes.
Then score it on twelve 0-10 dimensions: aspiration_clarity, workaround_pain, stuck_pattern, market_size, budget_confirmed, competition_gap, domain_expertise, audience_access, passion_level, technical_capability, reachability, virality_potential.
Recommend one of proceed, monitor or reject and name the next action.
Answer with JSON shaped as {"name": ..., "research": {...}, "score": {...}} inside a json code block.`
