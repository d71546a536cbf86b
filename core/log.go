package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/SSSOC-CAN/flux/utils"
	"github.com/mattn/go-colorable"
	color "github.com/mgutz/ansi"
	e "github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	logFileRoot = "logfile"
	logFileExt  = "log"
	logFileName = "logfile.log"
)

// subLogger is a thin-wrapper for the `zerolog.Logger` struct
type subLogger struct {
	SubLogger zerolog.Logger
	Subsystem string
}

type moddedFileWriter struct {
	sync.Mutex
	File         *os.File
	maxFileSize  int64 // bytes
	maxFiles     int64
	fileNameRoot string
	fileExt      string
	pathToFile   string
	fileNum      *regexp.Regexp
}

func newModdedFileWriter(file *os.File, dir string, maxFileSize, maxFiles int64) *moddedFileWriter {
	return &moddedFileWriter{
		File:         file,
		maxFileSize:  maxFileSize,
		maxFiles:     maxFiles,
		fileNameRoot: logFileRoot,
		fileExt:      logFileExt,
		pathToFile:   dir,
		fileNum:      regexp.MustCompile(fmt.Sprintf("^%s([0-9]+)\\.", logFileRoot)),
	}
}

// Write Implements the io.Writer interface. Once the current file reaches the
// maximum size, writing moves on to the next file in the rotation
func (w *moddedFileWriter) Write(p []byte) (n int, err error) {
	w.Lock()
	defer w.Unlock()
	stat, err := w.File.Stat()
	if err != nil {
		return 0, err
	}
	if w.maxFileSize > 0 && stat.Size() > 0 && stat.Size()+int64(len(p)) > w.maxFileSize {
		var fileNum int64
		if matches := w.fileNum.FindStringSubmatch(stat.Name()); len(matches) > 1 {
			fileNum, err = strconv.ParseInt(matches[1], 10, 64)
			if err != nil {
				return 0, err
			}
		}
		w.File.Close()
		var newFileName string
		if fileNum >= w.maxFiles-1 {
			newFileName = fmt.Sprintf("%s.%s", w.fileNameRoot, w.fileExt)
		} else {
			newFileName = fmt.Sprintf("%s%v.%s", w.fileNameRoot, fileNum+1, w.fileExt)
		}
		newPath := filepath.Join(w.pathToFile, newFileName)
		if utils.FileExists(newPath) {
			if err = os.Remove(newPath); err != nil {
				return 0, err
			}
		}
		newFile, err := os.OpenFile(newPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0775)
		if err != nil {
			return 0, err
		}
		w.File = newFile
	}
	return w.File.Write(p)
}

// Close closes the current file of the rotation. Writes after Close fail
func (w *moddedFileWriter) Close() error {
	w.Lock()
	defer w.Unlock()
	return w.File.Close()
}

// log_level is a mapping of log levels as strings to structs from the zerolog package
var log_level = map[string]zerolog.Level{
	"INFO":  zerolog.InfoLevel,
	"WARN":  zerolog.WarnLevel,
	"PANIC": zerolog.PanicLevel,
	"FATAL": zerolog.FatalLevel,
	"ERROR": zerolog.ErrorLevel,
	"DEBUG": zerolog.DebugLevel,
	"TRACE": zerolog.TraceLevel,
}

// formatLevel colours the level of console log lines
func formatLevel(i interface{}) string {
	x := strings.ToLower(fmt.Sprintf("%v", i))
	var msg string
	switch x {
	case "info":
		msg = color.Color(strings.ToUpper("["+x+"]"), "green")
	case "panic", "fatal", "error":
		msg = color.Color(strings.ToUpper("["+x+"]"), "red")
	case "warn", "debug":
		msg = color.Color(strings.ToUpper("["+x+"]"), "yellow")
	case "trace":
		msg = color.Color(strings.ToUpper("["+x+"]"), "magenta")
	default:
		msg = strings.ToUpper("[" + x + "]")
	}
	return msg + "\t"
}

// InitLogger creates a new instance of the `zerolog.Logger` type. If `ConsoleOutput` is true, it will output the logs to the console as well as the logfile.
// The returned io.Closer closes the logfile and must be called once the logger is no longer used
func InitLogger(config *Config) (zerolog.Logger, io.Closer, error) {
	level, ok := log_level[strings.ToUpper(config.LogLevel)]
	if !ok && config.LogLevel != "" {
		return zerolog.Logger{}, nil, e.Wrap(ErrUnknownLogLevel, config.LogLevel)
	} else if !ok {
		level = zerolog.InfoLevel
	}
	if config.DefaultLogDir && !utils.FileExists(config.LogFileDir) {
		if err := os.MkdirAll(config.LogFileDir, 0775); err != nil {
			return zerolog.Logger{}, nil, err
		}
	}
	log_file, err := os.OpenFile(filepath.Join(config.LogFileDir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0775)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}
	modded_file := newModdedFileWriter(log_file, config.LogFileDir, config.MaxLogFileSize*1000000, config.MaxLogFiles)
	var logger zerolog.Logger
	if config.ConsoleOutput {
		output := zerolog.NewConsoleWriter()
		if runtime.GOOS == "windows" {
			output.Out = colorable.NewColorableStdout()
		} else {
			output.Out = os.Stderr
		}
		output.FormatLevel = formatLevel
		multi := zerolog.MultiLevelWriter(output, modded_file)
		logger = zerolog.New(multi).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(modded_file).With().Timestamp().Logger()
	}
	return logger.Level(level), modded_file, nil
}

// NewSubLogger takes a `zerolog.Logger` and string for the name of the subsystem and creates a `subLogger` for this subsystem
func NewSubLogger(l *zerolog.Logger, subsystem string) *subLogger {
	sub := l.With().Str("subsystem", subsystem).Logger()
	s := subLogger{
		SubLogger: sub,
		Subsystem: subsystem,
	}
	return &s
}

// LogWithErrors is a method which takes a log level and message as a string and writes the corresponding log. Returns an error if the log level doesn't exist
func (s subLogger) LogWithErrors(level, msg string) error {
	if lvl, ok := log_level[level]; ok {
		s.SubLogger.WithLevel(lvl).Msg(msg)
		return nil
	}
	s.SubLogger.Error().Msg(fmt.Sprintf("Log level %v not found.", level))
	return e.Wrap(ErrUnknownLogLevel, level)
}
