package common

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 日志级别，int类型，内部接口使用常量
type LOG_LEVEL int

const (
	LEVEL_DEBUG LOG_LEVEL = iota
	LEVEL_INFO
	LEVEL_WARN
	LEVEL_ERROR
)

var LOG_LEVEL_Value = map[string]LOG_LEVEL{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

const (
	LOG_MODE_DEV  = "DEV"
	LOG_MODE_PROD = "PROD"
)

type LogConfig struct {
	BriefMode          string
	ModuleSpecialLevel map[string]LOG_LEVEL // keyed by MODULE_* name

	LogPath        string // empty disables the rotating file sink
	LogLevel       LOG_LEVEL
	RotationMaxAge int // days
	RotationTime   int // hours
	RotationSize   int // MB
	ShowLine       bool
	LogInConsole   bool
}

// ParseLogLevel maps a level name such as "debug" to LOG_LEVEL, falling back to INFO.
func ParseLogLevel(name string) LOG_LEVEL {
	if lvl, ok := LOG_LEVEL_Value[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return lvl
	}
	return LEVEL_INFO
}

func DefaultLogConfig(isDEV bool) *LogConfig {
	if isDEV {
		return defaultBriefLogConfigForDEV()
	}

	return defaultBriefLogConfigForPROD()
}

func defaultBriefLogConfigForDEV() *LogConfig {
	return &LogConfig{
		LogPath:        "./perceptron.dev.log",
		LogLevel:       LEVEL_DEBUG,
		RotationMaxAge: 1,
		RotationTime:   1,
		RotationSize:   10,
		ShowLine:       true,
		LogInConsole:   true,
	}
}

func defaultBriefLogConfigForPROD() *LogConfig {
	return &LogConfig{
		LogPath:        "./perceptron.prod.log",
		LogLevel:       LEVEL_INFO,
		RotationMaxAge: 1,
		RotationTime:   24,
		RotationSize:   30,
		ShowLine:       true,
		LogInConsole:   false,
	}
}

// fallbackLogConfig is used until SetLogConfig is called: warnings and
// errors on the console, nothing on disk.
func fallbackLogConfig() *LogConfig {
	return &LogConfig{
		LogLevel:     LEVEL_WARN,
		LogInConsole: true,
	}
}

func adjustLogConfig(name string, lc *LogConfig) *LogConfig {
	if lc.BriefMode != "" {
		return DefaultLogConfig(lc.BriefMode != LOG_MODE_PROD)
	}

	newC := *lc
	if lvl, ok := lc.ModuleSpecialLevel[name]; ok {
		newC.LogLevel = lvl
	}
	return &newC
}

func zapLevelOf(lvl LOG_LEVEL) zapcore.Level {
	switch lvl {
	case LEVEL_DEBUG:
		return zap.DebugLevel
	case LEVEL_INFO:
		return zap.InfoLevel
	case LEVEL_WARN:
		return zap.WarnLevel
	case LEVEL_ERROR:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func NewSugaredLogger(name string, lc *LogConfig) *zap.SugaredLogger {
	lcc := adjustLogConfig(name, lc)

	zapLevel := zapLevelOf(lcc.LogLevel)
	priorityLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapLevel
	})

	// console output goes to stderr, stdout belongs to the prompt and epoch reports
	var syncers []zapcore.WriteSyncer
	if lcc.LogPath != "" {
		rotationWriter, err := rotatelogs.New(
			lcc.LogPath+".%Y%m%d%H",
			rotatelogs.WithRotationTime(time.Duration(lcc.RotationTime)*time.Hour),
			rotatelogs.WithRotationSize(int64(lcc.RotationSize*1024*1024)),
			rotatelogs.WithMaxAge(time.Hour*24*time.Duration(lcc.RotationMaxAge)),
		)
		if err != nil {
			log.Fatalf("new rotation log failed, %s", err)
		}
		syncers = append(syncers, zapcore.AddSync(rotationWriter))
	}
	if lcc.LogInConsole {
		syncers = append(syncers, zapcore.AddSync(os.Stderr))
	}
	syncer := zapcore.NewMultiWriteSyncer(syncers...)

	customLevelEncoder := func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + level.CapitalString() + "]")
	}
	customTimeEncoder := func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "line",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encoderConfig)
	core := zapcore.NewCore(encoder, syncer, priorityLevel)
	logger := zap.New(core).Named(name)

	var opts []zap.Option
	if lcc.ShowLine {
		opts = append(opts, zap.AddCaller())
	}
	// the sugared logger is wrapped by ModuleLogger, skip that frame
	opts = append(opts, zap.AddCallerSkip(1))
	logger = logger.WithOptions(opts...)

	return logger.Sugar()
}

const (
	MODULE_MODEL   = "[Model]"
	MODULE_TRAINER = "[Trainer]"
	MODULE_DATASET = "[Dataset]"
	MODULE_PROMPT  = "[Prompt]"
	MODULE_NODE    = "[Node]"
)

var modules = []string{MODULE_MODEL, MODULE_TRAINER, MODULE_DATASET, MODULE_PROMPT, MODULE_NODE}

// ModuleByName finds the module whose name, without brackets, equals name
// ignoring case: "trainer" gives MODULE_TRAINER.
func ModuleByName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, m := range modules {
		if strings.EqualFold(strings.Trim(m, "[]"), name) {
			return m, true
		}
	}
	return "", false
}

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

// ModuleLogger is a named logger whose backing zap logger can be swapped
// when the log config changes.
type ModuleLogger struct {
	zlog  *zap.SugaredLogger
	name  string
	mutex sync.RWMutex
}

func (l *ModuleLogger) Debug(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Debug(args...)
}

func (l *ModuleLogger) Debugf(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Debugf(format, args...)
}

func (l *ModuleLogger) Error(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Error(args...)
}

func (l *ModuleLogger) Errorf(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Errorf(format, args...)
}

func (l *ModuleLogger) Info(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Info(args...)
}

func (l *ModuleLogger) Infof(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Infof(format, args...)
}

func (l *ModuleLogger) Warn(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Warn(args...)
}

func (l *ModuleLogger) Warnf(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Warnf(format, args...)
}

// With returns a child logger carrying the given key/value pairs, e.g. the run id.
func (l *ModuleLogger) With(args ...interface{}) *ModuleLogger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return &ModuleLogger{name: l.name, zlog: l.zlog.With(args...)}
}

func (l *ModuleLogger) Sync() error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.zlog.Sync()
}

func (l *ModuleLogger) SetLogger(logger *zap.SugaredLogger) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.zlog = logger
}

var (
	moduleLoggersMap = make(map[string]*ModuleLogger)
	loggerMutex      sync.RWMutex
	moduleLogConfig  *LogConfig
)

func GetLogger(name string) *ModuleLogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if logger, ok := moduleLoggersMap[name]; ok {
		return logger
	}

	if moduleLogConfig == nil {
		moduleLogConfig = fallbackLogConfig()
	}

	logger := &ModuleLogger{
		name: name,
		zlog: NewSugaredLogger(name, moduleLogConfig),
	}
	moduleLoggersMap[name] = logger

	return logger
}

// SetLogConfig replaces the config and rebuilds every logger handed out so far.
func SetLogConfig(config *LogConfig) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	moduleLogConfig = config
	for _, logger := range moduleLoggersMap {
		logger.SetLogger(NewSugaredLogger(logger.name, moduleLogConfig))
	}
}
