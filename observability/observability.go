// Package observability defines the structured logging surface threaded
// through a conversion. Loggers are passed explicitly into each
// page-processing call; there is no process-wide sink.
package observability

import (
	"fmt"
	"strings"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type int64Field struct {
	key string
	val int64
}

func (f int64Field) Key() string        { return f.key }
func (f int64Field) Value() interface{} { return f.val }

type float64Field struct {
	key string
	val float64
}

func (f float64Field) Key() string        { return f.key }
func (f float64Field) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field          { return stringField{key, value} }
func Int(key string, value int) Field         { return intField{key, value} }
func Int64(key string, value int64) Field     { return int64Field{key, value} }
func Float64(key string, value float64) Field { return float64Field{key, value} }
func Error(key string, err error) Field       { return errorField{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// CallbackLogger adapts a free-text line sink into a Logger. Each event is
// rendered as "msg key=value ..." and handed to fn. A nil fn yields a nop
// logger.
func CallbackLogger(fn func(line string)) Logger {
	if fn == nil {
		return NopLogger{}
	}
	return &callbackLogger{fn: fn}
}

type callbackLogger struct {
	fn     func(string)
	fields []Field
}

func (l *callbackLogger) emit(msg string, fields []Field) {
	var b strings.Builder
	b.WriteString(msg)
	for _, f := range l.fields {
		fmt.Fprintf(&b, " %s=%v", f.Key(), f.Value())
	}
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key(), f.Value())
	}
	l.fn(b.String())
}

func (l *callbackLogger) Debug(msg string, fields ...Field) { l.emit(msg, fields) }
func (l *callbackLogger) Info(msg string, fields ...Field)  { l.emit(msg, fields) }
func (l *callbackLogger) Warn(msg string, fields ...Field)  { l.emit(msg, fields) }
func (l *callbackLogger) Error(msg string, fields ...Field) { l.emit(msg, fields) }

func (l *callbackLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &callbackLogger{fn: l.fn, fields: merged}
}
