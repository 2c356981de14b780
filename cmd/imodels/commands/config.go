package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/imodels-client/internal/auth"
	"github.com/fivetwenty-io/imodels-client/internal/constants"
	"github.com/fivetwenty-io/imodels-client/internal/transfer"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
	"github.com/fivetwenty-io/imodels-client/pkg/imodelsclient"
)

// Config represents the CLI configuration.
type Config struct {
	API            string     `json:"api,omitempty"              yaml:"api,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	Output         string     `json:"output,omitempty"           yaml:"output,omitempty"`

	Cache CacheSettings `json:"cache" yaml:"cache"`
	S3    S3Settings    `json:"s3"    yaml:"s3"`
}

// CacheSettings selects the backend that caches changesets between commands.
type CacheSettings struct {
	// Type is one of memory, bolt, redis, nats or none.
	Type      string `json:"type,omitempty"       yaml:"type,omitempty"`
	Path      string `json:"path,omitempty"       yaml:"path,omitempty"`
	RedisAddr string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	NATSURL   string `json:"nats_url,omitempty"   yaml:"nats_url,omitempty"`
}

// S3Settings enables s3:// transfer URLs.
type S3Settings struct {
	Region          string `json:"region,omitempty"            yaml:"region,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"          yaml:"endpoint,omitempty"`
	AccessKeyID     string `json:"access_key_id,omitempty"     yaml:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty" yaml:"secret_access_key,omitempty"`
}

// configKeys maps the keys accepted by config set/unset to their fields.
var configKeys = map[string]func(config *Config) *string{
	"api":                  func(c *Config) *string { return &c.API },
	"output":               func(c *Config) *string { return &c.Output },
	"cache.type":           func(c *Config) *string { return &c.Cache.Type },
	"cache.path":           func(c *Config) *string { return &c.Cache.Path },
	"cache.redis_addr":     func(c *Config) *string { return &c.Cache.RedisAddr },
	"cache.nats_url":       func(c *Config) *string { return &c.Cache.NATSURL },
	"s3.region":            func(c *Config) *string { return &c.S3.Region },
	"s3.endpoint":          func(c *Config) *string { return &c.S3.Endpoint },
	"s3.access_key_id":     func(c *Config) *string { return &c.S3.AccessKeyID },
	"s3.secret_access_key": func(c *Config) *string { return &c.S3.SecretAccessKey },
}

var secretKeys = map[string]bool{
	"token":                true,
	"s3.secret_access_key": true,
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the iModels CLI configuration stored in $HOME/.imodels/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := maskSecrets(loadConfig())

			return renderOutput(cmd.OutOrStdout(), config, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("api", valueOrNA(config.API))
				_ = table.Append("token", valueOrNA(config.Token))

				if config.TokenExpiresAt != nil {
					_ = table.Append("token_expires_at", formatTime(*config.TokenExpiresAt))
				}

				for _, key := range sortedConfigKeys() {
					if key == "api" {
						continue
					}

					_ = table.Append(key, valueOrNA(*configKeys[key](config)))
				}
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + fmt.Sprint(sortedConfigKeys()),
		Args:  cobra.ExactArgs(2), //nolint:mnd // Key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigValue(cmd, args[0], args[1])
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigValue(cmd, args[0], "")
		},
	}
}

func updateConfigValue(cmd *cobra.Command, key, value string) error {
	field, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	if key == "output" && value != "" {
		switch value {
		case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		default:
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, value)
		}
	}

	config := loadConfig()
	*field(config) = value

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	shown := value
	if secretKeys[key] && value != "" {
		shown = Masked
	}

	if value == "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key)
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, shown)
	}

	return nil
}

func sortedConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for key := range configKeys {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func valueOrNA(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

func maskSecrets(config *Config) *Config {
	masked := *config

	if masked.Token != "" {
		masked.Token = Masked
	}

	if masked.S3.SecretAccessKey != "" {
		masked.S3.SecretAccessKey = Masked
	}

	return &masked
}

// loadConfig reads the configuration from viper, so flags and IMODELS_*
// environment variables override the file.
func loadConfig() *Config {
	config := &Config{
		API:    viper.GetString("api"),
		Token:  viper.GetString("token"),
		Output: viper.GetString("output"),
		Cache: CacheSettings{
			Type:      viper.GetString("cache.type"),
			Path:      viper.GetString("cache.path"),
			RedisAddr: viper.GetString("cache.redis_addr"),
			NATSURL:   viper.GetString("cache.nats_url"),
		},
		S3: S3Settings{
			Region:          viper.GetString("s3.region"),
			Endpoint:        viper.GetString("s3.endpoint"),
			AccessKeyID:     viper.GetString("s3.access_key_id"),
			SecretAccessKey: viper.GetString("s3.secret_access_key"),
		},
	}

	if expiresAt := viper.GetTime("token_expires_at"); !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	return config
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName), nil
}

// saveConfigStruct writes config to the config file and makes it the
// current viper state.
func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.Set("api", config.API)
	viper.Set("token", config.Token)
	viper.Set("output", config.Output)

	if config.TokenExpiresAt != nil {
		viper.Set("token_expires_at", *config.TokenExpiresAt)
	} else {
		viper.Set("token_expires_at", nil)
	}

	for key, field := range configKeys {
		viper.Set(key, *field(config))
	}

	return nil
}

// cacheConfig builds the client cache configuration. Changesets are cached
// in memory unless another backend is configured.
func cacheConfig(settings CacheSettings) (*imodels.CacheConfig, error) {
	config := &imodels.CacheConfig{
		Type:    imodels.CacheType(settings.Type),
		Options: imodels.DefaultCacheOptions(),
	}

	switch config.Type {
	case "", imodels.CacheTypeMemory:
		config.Type = imodels.CacheTypeMemory
	case imodels.CacheTypeBolt:
		path := settings.Path
		if path == "" {
			configFile, err := configFilePath()
			if err != nil {
				return nil, err
			}

			path = filepath.Join(filepath.Dir(configFile), "cache.db")
		}

		config.Bolt = &imodels.BoltCacheConfig{Path: path}
	case imodels.CacheTypeRedis:
		config.Redis = &imodels.RedisCacheConfig{Addr: settings.RedisAddr}
	case imodels.CacheTypeNATS:
		config.NATS = &imodels.NATSKVConfig{URL: settings.NATSURL, TTL: constants.ChangesetCacheTTL}
	}

	return config, nil
}

// contentTransfer returns the transfer used for changeset files. Presigned
// HTTP URLs always work; s3:// URLs need an S3 region.
func contentTransfer(settings S3Settings) imodels.ContentTransfer {
	router := transfer.NewRouter(transfer.NewHTTPTransfer())

	if settings.Region == "" {
		return router
	}

	options := s3.Options{
		Region:       settings.Region,
		UsePathStyle: settings.Endpoint != "",
	}

	if settings.Endpoint != "" {
		options.BaseEndpoint = aws.String(settings.Endpoint)
	}

	if settings.AccessKeyID != "" {
		credentials := aws.Credentials{
			AccessKeyID:     settings.AccessKeyID,
			SecretAccessKey: settings.SecretAccessKey,
			Source:          "imodels-config",
		}

		options.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return credentials, nil
		})
	}

	return router.Handle("s3", transfer.NewS3Transfer(s3.New(options)))
}

// CreateClient creates an iModels client from the CLI configuration.
func CreateClient() (imodels.Client, error) {
	config := loadConfig()

	if config.Token == "" {
		return nil, constants.ErrNotAuthenticated
	}

	cache, err := cacheConfig(config.Cache)
	if err != nil {
		return nil, err
	}

	clientConfig := &imodels.Config{
		APIEndpoint:     config.API,
		Authorization:   auth.NewCredentialContext(auth.NewStaticTokenProvider(config.Token)),
		ContentTransfer: contentTransfer(config.S3),
		CacheConfig:     cache,
		Debug:           viper.GetBool("verbose"),
		UserAgent:       "imodels-cli",
	}

	if clientConfig.Debug {
		clientConfig.Logger = newStderrLogger()
	}

	client, err := imodelsclient.New(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}
