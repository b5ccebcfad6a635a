package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/josefjadrny/go-idb/pkg/database"
	"github.com/josefjadrny/go-idb/pkg/logging"
)

const (
	optionNameAPIAddr            = "api-addr"
	optionNameVerbosity          = "verbosity"
	optionNameShutdownTimeout    = "shutdown-timeout"
	optionNameStorageType        = "storage-type"
	optionNameStorageDir         = "storage-dir"
	optionNameStorageCodec       = "storage-codec"
	optionNameStorageCompression = "storage-compression"
)

const configName = ".idb"

func init() {
	cobra.EnableCommandSorting = false
}

type command struct {
	root    *cobra.Command
	config  *viper.Viper
	fs      afero.Fs
	cfgFile string
	homeDir string
}

type option func(*command)

func newCommand(opts ...option) (c *command, err error) {
	c = &command{
		root: &cobra.Command{
			Use:           "idb",
			Short:         "schema-validated document store",
			SilenceErrors: true,
			SilenceUsage:  true,
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				return c.initConfig()
			},
		},
		fs: afero.NewOsFs(),
	}

	for _, o := range opts {
		o(c)
	}

	// Find home directory.
	if err := c.setHomeDir(); err != nil {
		return nil, err
	}

	c.initGlobalFlags()
	c.initServeCmd()
	c.initValidateCmd()
	c.initVersionCmd()

	return c, nil
}

func (c *command) Execute() (err error) {
	return c.root.Execute()
}

// Execute parses command line arguments and runs appropriate functions.
func Execute() (err error) {
	c, err := newCommand()
	if err != nil {
		return err
	}
	return c.Execute()
}

func (c *command) initGlobalFlags() {
	globalFlags := c.root.PersistentFlags()
	globalFlags.StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.idb.yaml)")
}

func (c *command) initConfig() (err error) {
	config := viper.New()
	config.SetFs(c.fs)
	if c.cfgFile != "" {
		// Use config file from the flag.
		config.SetConfigFile(c.cfgFile)
	} else {
		// Search config in home directory with name ".idb" (without extension).
		config.AddConfigPath(c.homeDir)
		config.SetConfigName(configName)
		config.SetConfigType("yaml")
	}

	// Environment
	config.SetEnvPrefix("idb")
	config.AutomaticEnv() // read in environment variables that match
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// If a config file is found, read it in.
	if err := config.ReadInConfig(); err != nil {
		var e viper.ConfigFileNotFoundError
		if !errors.As(err, &e) {
			return err
		}
	}
	c.config = config
	return nil
}

func (c *command) setHomeDir() (err error) {
	if c.homeDir != "" {
		return
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	c.homeDir = dir
	return nil
}

func (c *command) setStorageFlags(cmd *cobra.Command) {
	cmd.Flags().String(optionNameStorageType, "", "override storage type: memory, file or leveldb")
	cmd.Flags().String(optionNameStorageDir, "", "override storage directory")
	cmd.Flags().String(optionNameStorageCodec, "", "override file codec: json or godb")
	cmd.Flags().String(optionNameStorageCompression, "", "override godb compression: none, lz4 or zstd")
}

// loadConfig reads collections and storage from the config file, then applies
// storage overrides from flags and IDB_* environment variables.
func (c *command) loadConfig() (database.Config, error) {
	var cfg database.Config
	if path := c.config.ConfigFileUsed(); path != "" {
		var err error
		if cfg, err = database.LoadConfig(c.fs, path); err != nil {
			return database.Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	overrides := []struct {
		option string
		target *string
	}{
		{optionNameStorageType, &cfg.Storage.Type},
		{optionNameStorageDir, &cfg.Storage.Dir},
		{optionNameStorageCodec, &cfg.Storage.Codec},
		{optionNameStorageCompression, &cfg.Storage.Compression},
	}
	for _, o := range overrides {
		if v := c.config.GetString(o.option); v != "" {
			*o.target = v
		}
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, verbosity string) (logging.Logger, error) {
	return logging.NewVerbosity(cmd.OutOrStdout(), strings.ToLower(verbosity))
}

// WithHomeDir sets the directory searched for the default config file.
func WithHomeDir(dir string) func(c *command) {
	return func(c *command) {
		c.homeDir = dir
	}
}

// WithFs sets the filesystem used to read config files.
func WithFs(fs afero.Fs) func(c *command) {
	return func(c *command) {
		c.fs = fs
	}
}

// WithArgs sets the command line arguments.
func WithArgs(a ...string) func(c *command) {
	return func(c *command) {
		c.root.SetArgs(a)
	}
}

// WithOutput sets the writer for command output and errors.
func WithOutput(w io.Writer) func(c *command) {
	return func(c *command) {
		c.root.SetOut(w)
		c.root.SetErr(w)
	}
}
