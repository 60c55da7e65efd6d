package logger

// LoggerInstance defines the interface for logging backends.
type LoggerInstance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

// Logger holds multiple logging backends and dispatches log calls to all of them.
type Logger struct {
	instances []LoggerInstance
	fields    []any
}

var singleton *Logger

func getSingleton() *Logger {
	return singleton
}

// Init initializes the global logger with one or more logging backends.
// Calls made before Init are dropped.
func Init(instances ...LoggerInstance) {
	singleton = &Logger{
		instances: instances,
	}
}

// With returns a logger that prepends keyvals to every call. It is used for
// request scoped fields such as the request id and client identifier.
func With(keyvals ...any) *Logger {
	l := getSingleton()
	if l == nil {
		return &Logger{}
	}
	fields := make([]any, 0, len(l.fields)+len(keyvals))
	fields = append(fields, l.fields...)
	fields = append(fields, keyvals...)
	return &Logger{instances: l.instances, fields: fields}
}

func (l *Logger) merge(keyvals []any) []any {
	if len(l.fields) == 0 {
		return keyvals
	}
	out := make([]any, 0, len(l.fields)+len(keyvals))
	out = append(out, l.fields...)
	return append(out, keyvals...)
}

// Debug writes a message at DEBUG level.
func (l *Logger) Debug(message string, keyvals ...any) {
	for _, instance := range l.instances {
		instance.Debug(message, l.merge(keyvals)...)
	}
}

// Info writes a message at INFO level.
func (l *Logger) Info(message string, keyvals ...any) {
	for _, instance := range l.instances {
		instance.Info(message, l.merge(keyvals)...)
	}
}

// Warn writes a message at WARN level.
func (l *Logger) Warn(message string, keyvals ...any) {
	for _, instance := range l.instances {
		instance.Warn(message, l.merge(keyvals)...)
	}
}

// Error writes a message at ERROR level.
func (l *Logger) Error(message string, keyvals ...any) {
	for _, instance := range l.instances {
		instance.Error(message, l.merge(keyvals)...)
	}
}

// Log writes a message at the default log level to all configured backends.
func Log(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Log(message, keyvals...)
	}
}

// Info writes a message at INFO level to all configured backends.
func Info(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	logger.Info(message, keyvals...)
}

// Warn writes a message at WARN level to all configured backends.
func Warn(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	logger.Warn(message, keyvals...)
}

// Error writes a message at ERROR level to all configured backends.
func Error(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	logger.Error(message, keyvals...)
}

// Debug writes a message at DEBUG level to all configured backends.
func Debug(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	logger.Debug(message, keyvals...)
}

// Fatal writes a message at FATAL level and terminates the program.
func Fatal(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Fatal(message, keyvals...)
	}
}
