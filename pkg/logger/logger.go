package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// Category represents a log category
type Category string

const (
	CategoryStartup    Category = "startup"
	CategoryAPI        Category = "api"
	CategoryAuth       Category = "auth"
	CategoryDB         Category = "db"
	CategoryEngine     Category = "engine"
	CategoryDetection  Category = "detection"
	CategoryInspection Category = "inspection"
	CategoryStorage    Category = "storage"
	CategoryScheduler  Category = "scheduler"
	CategoryWebSocket  Category = "websocket"
	CategoryMQTT       Category = "mqtt"
)

// AllCategories lists every category that has its own log file.
var AllCategories = []Category{
	CategoryStartup, CategoryAPI, CategoryAuth, CategoryDB, CategoryEngine, CategoryDetection,
	CategoryInspection, CategoryStorage, CategoryScheduler, CategoryWebSocket, CategoryMQTT,
}

// Level represents log level
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     Level                  `json:"level"`
	Category  Category               `json:"category"`
	Action    string                 `json:"action"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Duration  string                 `json:"duration,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Logger writes one JSON file per category and day
type Logger struct {
	mu      sync.Mutex
	logDir  string
	writers map[Category]*os.File
	console bool
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the default logger
func Init(logDir string, console bool) error {
	var err error
	once.Do(func() {
		defaultLogger, err = NewLogger(logDir, console)
	})
	return err
}

// NewLogger creates a new logger
func NewLogger(logDir string, console bool) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &Logger{
		logDir:  logDir,
		writers: make(map[Category]*os.File),
		console: console,
	}, nil
}

func (l *Logger) getWriter(category Category) (io.Writer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	filename := fmt.Sprintf("%s_%s.log", category, time.Now().Format("2006-01-02"))

	if writer, exists := l.writers[category]; exists {
		if filepath.Base(writer.Name()) == filename {
			return writer, nil
		}
		writer.Close()
	}

	file, err := os.OpenFile(filepath.Join(l.logDir, filename), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l.writers[category] = file
	return file, nil
}

// Log writes a log entry
func (l *Logger) Log(entry LogEntry) {
	entry.Timestamp = time.Now()

	jsonData, err := json.Marshal(entry)
	if err != nil {
		fmt.Printf("Error marshaling log entry: %v\n", err)
		return
	}

	writer, err := l.getWriter(entry.Category)
	if err != nil {
		fmt.Printf("Error getting log writer: %v\n", err)
	} else {
		fmt.Fprintln(writer, string(jsonData))
	}

	if l.console {
		l.printToConsole(entry)
	}
}

var levelColors = map[Level]string{
	LevelDebug: "\033[36m",
	LevelInfo:  "\033[32m",
	LevelWarn:  "\033[33m",
	LevelError: "\033[31m",
}

func (l *Logger) printToConsole(entry LogEntry) {
	const reset = "\033[0m"

	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]%s [%s] [%s] %s: %s",
		levelColors[entry.Level], entry.Level, reset,
		entry.Timestamp.Format("15:04:05.000"),
		entry.Category, entry.Action, entry.Message,
	)
	if entry.UserID != "" {
		fmt.Fprintf(&b, " (user: %s)", entry.UserID)
	}
	if entry.Duration != "" {
		fmt.Fprintf(&b, " (duration: %s)", entry.Duration)
	}
	if entry.Error != "" {
		fmt.Fprintf(&b, " ERROR: %s", entry.Error)
	}
	if len(entry.Data) > 0 {
		dataJSON, _ := json.Marshal(entry.Data)
		fmt.Fprintf(&b, " %s", dataJSON)
	}
	fmt.Println(b.String())
}

// Close closes all file writers
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, writer := range l.writers {
		writer.Close()
	}
	l.writers = make(map[Category]*os.File)
}

// Default returns the default logger. Without Init it writes to a
// directory under the system temp dir and stays quiet on the console.
func Default() *Logger {
	if defaultLogger == nil {
		_ = Init(filepath.Join(os.TempDir(), "screw-inspection-logs"), false)
	}
	return defaultLogger
}

// GetTypeName returns the dynamic type name of v, used when logging
// which implementation was wired for an interface.
func GetTypeName(v interface{}) string {
	if v == nil {
		return "<nil>"
	}
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		return "*" + t.Elem().Name()
	}
	return t.Name()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func logAt(level Level, category Category, action, message string, err error, data map[string]interface{}) {
	Default().Log(LogEntry{
		Level:    level,
		Category: category,
		Action:   action,
		Message:  message,
		Error:    errString(err),
		Data:     data,
	})
}

// Startup logs startup/initialization events
func Startup(action, message string, data map[string]interface{}) {
	logAt(LevelInfo, CategoryStartup, action, message, nil, data)
}

// StartupError logs startup errors
func StartupError(action, message string, err error, data map[string]interface{}) {
	logAt(LevelError, CategoryStartup, action, message, err, data)
}

// StartupWarn logs startup warnings
func StartupWarn(action, message string, data map[string]interface{}) {
	logAt(LevelWarn, CategoryStartup, action, message, nil, data)
}

// Auth logs authentication related events
func Auth(action, message string, data map[string]interface{}) {
	logAt(LevelInfo, CategoryAuth, action, message, nil, data)
}

// AuthError logs authentication errors
func AuthError(action, message string, err error, data map[string]interface{}) {
	logAt(LevelError, CategoryAuth, action, message, err, data)
}

// API logs API request/response events
func API(action, message string, data map[string]interface{}) {
	logAt(LevelInfo, CategoryAPI, action, message, nil, data)
}

// DB logs database operations
func DB(action, message string, data map[string]interface{}) {
	logAt(LevelDebug, CategoryDB, action, message, nil, data)
}

// Engine logs inference engine registry and loading events
func Engine(action, message string, data map[string]interface{}) {
	logAt(LevelInfo, CategoryEngine, action, message, nil, data)
}

// EngineError logs inference engine errors
func EngineError(action, message string, err error, data map[string]interface{}) {
	logAt(LevelError, CategoryEngine, action, message, err, data)
}

// Detection logs frame detection events
func Detection(action, message string, data map[string]interface{}) {
	logAt(LevelDebug, CategoryDetection, action, message, nil, data)
}

// DetectionError logs frame detection errors
func DetectionError(action, message string, err error, data map[string]interface{}) {
	logAt(LevelError, CategoryDetection, action, message, err, data)
}

// Inspection logs inspection record events
func Inspection(action, message string, data map[string]interface{}) {
	logAt(LevelInfo, CategoryInspection, action, message, nil, data)
}

// InspectionError logs inspection record errors
func InspectionError(action, message string, err error, data map[string]interface{}) {
	logAt(LevelError, CategoryInspection, action, message, err, data)
}

// Storage logs artifact storage events
func Storage(action, message string, data map[string]interface{}) {
	logAt(LevelInfo, CategoryStorage, action, message, nil, data)
}

// StorageError logs artifact storage errors
func StorageError(action, message string, err error, data map[string]interface{}) {
	logAt(LevelError, CategoryStorage, action, message, err, data)
}

// Scheduler logs scheduled job events
func Scheduler(action, message string, data map[string]interface{}) {
	logAt(LevelInfo, CategoryScheduler, action, message, nil, data)
}

// SchedulerWarn logs scheduled job warnings
func SchedulerWarn(action, message string, data map[string]interface{}) {
	logAt(LevelWarn, CategoryScheduler, action, message, nil, data)
}

// SchedulerError logs scheduled job errors
func SchedulerError(action, message string, err error, data map[string]interface{}) {
	logAt(LevelError, CategoryScheduler, action, message, err, data)
}

// WebSocket logs WebSocket related events
func WebSocket(action, message string, data map[string]interface{}) {
	logAt(LevelInfo, CategoryWebSocket, action, message, nil, data)
}

// WebSocketError logs WebSocket errors
func WebSocketError(action, message string, err error, data map[string]interface{}) {
	logAt(LevelError, CategoryWebSocket, action, message, err, data)
}

// MQTT logs MQTT publisher events
func MQTT(action, message string, data map[string]interface{}) {
	logAt(LevelInfo, CategoryMQTT, action, message, nil, data)
}

// MQTTError logs MQTT publisher errors
func MQTTError(action, message string, err error, data map[string]interface{}) {
	logAt(LevelError, CategoryMQTT, action, message, err, data)
}

// Info logs info level message
func Info(category Category, action, message string, data map[string]interface{}) {
	logAt(LevelInfo, category, action, message, nil, data)
}

// Error logs error level message
func Error(category Category, action, message string, err error, data map[string]interface{}) {
	logAt(LevelError, category, action, message, err, data)
}

// Debug logs debug level message
func Debug(category Category, action, message string, data map[string]interface{}) {
	logAt(LevelDebug, category, action, message, nil, data)
}

// Warn logs warning level message
func Warn(category Category, action, message string, data map[string]interface{}) {
	logAt(LevelWarn, category, action, message, nil, data)
}

// ReadLogsOptions options for reading logs
type ReadLogsOptions struct {
	Category Category // empty = all
	Level    Level    // empty = all
	Date     string   // YYYY-MM-DD, empty = today
	Lines    int      // default 100, max 1000
	Search   string   // matched against message, action and error
}

// ReadLogs reads log entries from files
func ReadLogs(opts ReadLogsOptions) ([]LogEntry, error) {
	return Default().ReadLogs(opts)
}

// ReadLogs reads log entries from the logger's log directory, newest first
func (l *Logger) ReadLogs(opts ReadLogsOptions) ([]LogEntry, error) {
	if opts.Lines <= 0 {
		opts.Lines = 100
	}
	if opts.Lines > 1000 {
		opts.Lines = 1000
	}
	date := opts.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	categories := AllCategories
	if opts.Category != "" {
		categories = []Category{opts.Category}
	}

	search := strings.ToLower(opts.Search)
	var entries []LogEntry
	for _, cat := range categories {
		data, err := os.ReadFile(filepath.Join(l.logDir, fmt.Sprintf("%s_%s.log", cat, date)))
		if err != nil {
			continue
		}

		for _, line := range strings.Split(string(data), "\n") {
			if line == "" {
				continue
			}
			var entry LogEntry
			if err := json.Unmarshal([]byte(line), &entry); err != nil {
				continue
			}
			if opts.Level != "" && entry.Level != opts.Level {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(entry.Message), search) &&
				!strings.Contains(strings.ToLower(entry.Action), search) &&
				!strings.Contains(strings.ToLower(entry.Error), search) {
				continue
			}
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if len(entries) > opts.Lines {
		entries = entries[:opts.Lines]
	}
	return entries, nil
}

// GetLogDir returns the log directory path
func GetLogDir() string {
	return Default().logDir
}

// ListLogFiles returns list of log files
func ListLogFiles() ([]string, error) {
	return Default().ListLogFiles()
}

// ListLogFiles returns the .log files in the log directory
func (l *Logger) ListLogFiles() ([]string, error) {
	entries, err := os.ReadDir(l.logDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".log" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
