// Copyright 2025 the arcport authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package console pairs zerolog structured output with a human-oriented
// colored console stream.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"arcport/pkg/report"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 45 // base width for the destination path
	kindWidth   = 10 // width for the transform kind
	statusWidth = 10 // width for status text
)

// 🎯 FileOperation represents one finished transform for display
type FileOperation struct {
	Path      string // destination path, relative to the destination root
	Creator   string // owning creator ID
	Transform string // copy/move/hardlink
	Status    string // succeeded/skipped/failed
	Reason    string // failure reason, if any
}

// 🎯 Logger handles console output alongside structured logging
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new console logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch op.Status {
	case "failed":
		symbol = '✗'
		symbolColor = color.FgRed
	case "skipped":
		symbol = '-'
		symbolColor = color.FgYellow
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", kindWidth, op.Transform)),
		fmt.Sprintf("%-*s", statusWidth, op.Status))

	if op.Reason != "" {
		line += " " + color.New(color.Faint).Sprint(op.Reason)
	}
	return line
}

// 📝 LogFileOperation logs one finished transform
func (l *Logger) LogFileOperation(op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	l.zlog.Info().
		Str("file", op.Path).
		Str("creator", op.Creator).
		Str("transform", op.Transform).
		Str("status", op.Status).
		Str("reason", op.Reason).
		Msg("file operation")
}

// 📝 StartCreator prints the per-creator section header
func (l *Logger) StartCreator(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(id))

	l.zlog.Info().Str("creator", id).Msg("starting creator")
}

// 📝 Header prints the tool banner
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("arcport")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📊 Summary prints the final run report
func (l *Logger) Summary(r report.RunReport) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console)
	fmt.Fprintf(l.console, "%d %s\n", r.Total(), color.New(color.Faint).Sprint("total"))
	fmt.Fprintf(l.console, "%d %s\n", r.Succeeded, color.New(color.FgGreen).Sprint("succeeded"))
	fmt.Fprintf(l.console, "%d %s\n", r.Skipped, color.New(color.FgYellow).Sprint("skipped"))
	fmt.Fprintf(l.console, "%d %s\n", r.Failed, color.New(color.FgRed).Sprint("failed"))

	for _, f := range r.Failures {
		fmt.Fprintf(l.console, "    %s %s %s\n",
			color.New(color.FgRed).Sprint("✗"),
			f.Source,
			color.New(color.Faint).Sprint(f.Reason))
	}

	l.zlog.Info().
		Int("total", r.Total()).
		Int("succeeded", r.Succeeded).
		Int("skipped", r.Skipped).
		Int("failed", r.Failed).
		Msg("run complete")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s\n", msg)
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}
