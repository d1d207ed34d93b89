package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"perceptron/common"
)

const (
	EnvPrefix     = "perceptron"
	EnvConfigPath = "PERCEPTRON_CFG_PATH"
	ConfigName    = "perceptron_config"

	KeyTrainPath    = "data.train_path"
	KeyTestPath     = "data.test_path"
	KeyPositive     = "data.positive"
	KeyNegative     = "data.negative"
	KeySplitRatio   = "data.split_ratio"
	KeyLearningRate = "train.learning_rate"
	KeyEpochs       = "train.epochs"
	KeySeed         = "train.seed"
	KeyEarlyStop    = "train.early_stop"
	KeyInteractive  = "train.interactive"
	KeyLogLevel     = "log.level"
	KeyModuleLevels = "log.module_levels"
)

// FlagKeys maps command line flag names to config keys.
var FlagKeys = map[string]string{
	"train":       KeyTrainPath,
	"test":        KeyTestPath,
	"split":       KeySplitRatio,
	"rate":        KeyLearningRate,
	"epochs":      KeyEpochs,
	"seed":        KeySeed,
	"early-stop":  KeyEarlyStop,
	"interactive": KeyInteractive,
	"log-level":   KeyLogLevel,
}

// askable keys have no default; when nothing sets them the caller asks on the console.
var askable = []string{KeyTrainPath, KeyTestPath, KeyLearningRate, KeyEpochs}

type DataConfig struct {
	TrainPath string `mapstructure:"train_path"`
	TestPath  string `mapstructure:"test_path"`
	Positive  string `mapstructure:"positive"`
	Negative  string `mapstructure:"negative"`

	// SplitRatio is the share of the training file kept for training when
	// no test file is given; the rest becomes the test set.
	SplitRatio float64 `mapstructure:"split_ratio"`
}

type TrainConfig struct {
	LearningRate float64 `mapstructure:"learning_rate"`
	Epochs       int     `mapstructure:"epochs"`
	Seed         int64   `mapstructure:"seed"` // 0 picks a time based seed
	EarlyStop    bool    `mapstructure:"early_stop"`
	Interactive  bool    `mapstructure:"interactive"`
}

type LogSection struct {
	Mode           string `mapstructure:"mode"` // DEV or PROD overrides everything below
	Level          string `mapstructure:"level"`
	Path           string `mapstructure:"path"`
	Console        bool   `mapstructure:"console"`
	ShowLine       bool   `mapstructure:"show_line"`
	RotationMaxAge int    `mapstructure:"rotation_max_age"`
	RotationTime   int    `mapstructure:"rotation_time"`
	RotationSize   int    `mapstructure:"rotation_size"`

	// ModuleLevels overrides Level per module, e.g. {trainer: debug}.
	ModuleLevels map[string]string `mapstructure:"module_levels"`
}

type LocalConfig struct {
	Data  DataConfig  `mapstructure:"data"`
	Train TrainConfig `mapstructure:"train"`
	Log   LogSection  `mapstructure:"log"`

	// File is the config file that was read, empty when none was found.
	File    string `mapstructure:"-"`
	missing []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPositive, "Iris-virginica")
	v.SetDefault(KeyNegative, "Iris-versicolor")
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyEarlyStop, false)
	v.SetDefault(KeyInteractive, true)
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault("log.path", "./perceptron.log")
	v.SetDefault("log.console", false)
	v.SetDefault("log.show_line", true)
	v.SetDefault("log.rotation_max_age", 7)
	v.SetDefault("log.rotation_time", 24)
	v.SetDefault("log.rotation_size", 30)
}

// InitLocalConfig merges, from lowest to highest priority: defaults, the
// config file, PERCEPTRON_* environment variables and the command flags.
// An explicit --config that cannot be read is an error; a missing
// perceptron_config.yaml in $PERCEPTRON_CFG_PATH is not.
func InitLocalConfig(cmd *cobra.Command) (*LocalConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	altPath := os.Getenv(EnvConfigPath)
	if altPath == "" {
		altPath = "."
	}
	v.AddConfigPath(altPath)
	v.SetConfigName(ConfigName)

	cmdSetConfigFile := ""
	if flag := cmd.Flags().Lookup("config"); flag != nil {
		cmdSetConfigFile = flag.Value.String()
	}
	if cmdSetConfigFile != "" {
		v.SetConfigFile(cmdSetConfigFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cmdSetConfigFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	for name, key := range FlagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errors.Wrapf(err, "bind flag %s", name)
			}
		}
	}

	lc := &LocalConfig{File: v.ConfigFileUsed()}
	if err := v.Unmarshal(lc); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	for _, key := range askable {
		if key == KeyTestPath && lc.Data.SplitRatio != 0 {
			continue
		}
		if !v.IsSet(key) {
			lc.missing = append(lc.missing, key)
		}
	}
	return lc, nil
}

// Missing lists the keys of settings nobody supplied.
func (c *LocalConfig) Missing() []string {
	return c.missing
}

func (c *LocalConfig) IsMissing(key string) bool {
	for _, k := range c.missing {
		if k == key {
			return true
		}
	}
	return false
}

// Supply fills a missing setting, e.g. with a console answer.
func (c *LocalConfig) Supply(key string, value interface{}) error {
	switch key {
	case KeyTrainPath:
		s, ok := value.(string)
		if !ok {
			return errors.Errorf("%s wants a string, got %T", key, value)
		}
		c.Data.TrainPath = s
	case KeyTestPath:
		s, ok := value.(string)
		if !ok {
			return errors.Errorf("%s wants a string, got %T", key, value)
		}
		c.Data.TestPath = s
	case KeyLearningRate:
		f, ok := value.(float64)
		if !ok {
			return errors.Errorf("%s wants a float64, got %T", key, value)
		}
		c.Train.LearningRate = f
	case KeyEpochs:
		n, ok := value.(int)
		if !ok {
			return errors.Errorf("%s wants an int, got %T", key, value)
		}
		c.Train.Epochs = n
	default:
		return errors.Errorf("unknown setting %s", key)
	}

	for i, k := range c.missing {
		if k == key {
			c.missing = append(c.missing[:i], c.missing[i+1:]...)
			break
		}
	}
	return nil
}

// Validate checks the settings the run needs.
func (c *LocalConfig) Validate() error {
	if len(c.missing) > 0 {
		return errors.Errorf("missing settings: %s", strings.Join(c.missing, ", "))
	}
	if c.Data.SplitRatio < 0 || c.Data.SplitRatio >= 1 {
		return errors.Errorf("split ratio must be in [0, 1), got %g", c.Data.SplitRatio)
	}
	if c.Data.TrainPath == "" {
		return errors.New("training data path is required")
	}
	if c.Data.TestPath == "" && c.Data.SplitRatio == 0 {
		return errors.New("test data path or split ratio is required")
	}
	if c.Train.Epochs < 0 {
		return errors.Errorf("epochs must not be negative, got %d", c.Train.Epochs)
	}
	return nil
}

func (c *LocalConfig) LogConfig() (*common.LogConfig, error) {
	mode := strings.ToUpper(strings.TrimSpace(c.Log.Mode))
	if mode != "" && mode != common.LOG_MODE_DEV && mode != common.LOG_MODE_PROD {
		return nil, errors.Errorf("unknown log mode %q", c.Log.Mode)
	}
	level := strings.ToUpper(strings.TrimSpace(c.Log.Level))
	if _, ok := common.LOG_LEVEL_Value[level]; !ok {
		return nil, errors.Errorf("unknown log level %q", c.Log.Level)
	}

	moduleLevels := make(map[string]common.LOG_LEVEL, len(c.Log.ModuleLevels))
	for name, lvl := range c.Log.ModuleLevels {
		module, ok := common.ModuleByName(name)
		if !ok {
			return nil, errors.Errorf("unknown log module %q", name)
		}
		value, ok := common.LOG_LEVEL_Value[strings.ToUpper(strings.TrimSpace(lvl))]
		if !ok {
			return nil, errors.Errorf("unknown log level %q for module %s", lvl, name)
		}
		moduleLevels[module] = value
	}

	return &common.LogConfig{
		BriefMode:          mode,
		ModuleSpecialLevel: moduleLevels,
		LogPath:            c.Log.Path,
		LogLevel:           common.ParseLogLevel(level),
		RotationMaxAge:     c.Log.RotationMaxAge,
		RotationTime:       c.Log.RotationTime,
		RotationSize:       c.Log.RotationSize,
		ShowLine:           c.Log.ShowLine,
		LogInConsole:       c.Log.Console,
	}, nil
}
