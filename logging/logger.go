package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type Level int

const (
	FATAL Level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

var levelNames = [...]string{
	FATAL:   "fatal",
	ERROR:   "error",
	WARNING: "warn",
	INFO:    "info",
	DEBUG:   "debug",
}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

type Record struct {
	Level     Level
	Component string
	Message   string
}

const (
	CLEARLINE = "\x1b[2K"
)

func Debugf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{DEBUG, "", fmt.Sprintf(msg, args...)}
}

func Infof(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{INFO, "", fmt.Sprintf(msg, args...)}
}

func Warnf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{WARNING, "", fmt.Sprintf(msg, args...)}
}

func Errorf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{ERROR, "", fmt.Sprintf(msg, args...)}
}

func Fatalf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{FATAL, "", fmt.Sprintf(msg, args...)}
}

func Progress(msg string) {
	defaultLogBroker.Progress <- msg
}

// SetQuiet disables progress output.
func SetQuiet(quiet bool) {
	defaultLogBroker.mu.Lock()
	defaultLogBroker.quiet = quiet
	defaultLogBroker.mu.Unlock()
}

// SetLevel sets the most verbose level that is printed. Defaults to INFO.
func SetLevel(level Level) {
	defaultLogBroker.mu.Lock()
	defaultLogBroker.level = level
	defaultLogBroker.mu.Unlock()
}

// SetOutput redirects all output. Defaults to os.Stdout.
func SetOutput(w io.Writer) {
	defaultLogBroker.mu.Lock()
	defaultLogBroker.out = w
	defaultLogBroker.mu.Unlock()
}

type Logger struct {
	Component string
}

func (l *Logger) Print(args ...interface{}) {
	defaultLogBroker.Records <- Record{INFO, l.Component, fmt.Sprint(args...)}
}

func (l *Logger) Printf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{INFO, l.Component, fmt.Sprintf(msg, args...)}
}

func (l *Logger) Debugf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{DEBUG, l.Component, fmt.Sprintf(msg, args...)}
}

func (l *Logger) Fatal(args ...interface{}) {
	defaultLogBroker.Records <- Record{FATAL, l.Component, fmt.Sprint(args...)}
}

func (l *Logger) Fatalf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{FATAL, l.Component, fmt.Sprintf(msg, args...)}
}

func (l *Logger) Errorf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{ERROR, l.Component, fmt.Sprintf(msg, args...)}
}

func (l *Logger) Warn(args ...interface{}) {
	defaultLogBroker.Records <- Record{WARNING, l.Component, fmt.Sprint(args...)}
}

func (l *Logger) Warnf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{WARNING, l.Component, fmt.Sprintf(msg, args...)}
}

func (l *Logger) Printfl(level Level, msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{level, l.Component, fmt.Sprintf(msg, args...)}
}

// StartStep starts timing of msg. StopStep with the same msg logs the
// duration.
func (l *Logger) StartStep(msg string) string {
	defaultLogBroker.StepStart <- Step{l.Component, msg}
	return msg
}

func (l *Logger) StopStep(msg string) {
	defaultLogBroker.StepStop <- Step{l.Component, msg}
}

func NewLogger(component string) *Logger {
	return &Logger{component}
}

type Step struct {
	Component string
	Name      string
}

type LogBroker struct {
	Records   chan Record
	Progress  chan string
	StepStart chan Step
	StepStop  chan Step
	sync      chan chan struct{}
	quit      chan bool
	wg        *sync.WaitGroup

	mu           sync.Mutex
	out          io.Writer
	level        Level
	quiet        bool
	newline      bool
	lastProgress string
}

func (l *LogBroker) loop() {
	defer l.wg.Done()
	steps := make(map[Step]time.Time)
For:
	for {
		select {
		case record := <-l.Records:
			l.printRecord(record)
		case progress := <-l.Progress:
			l.printProgress(progress)
		case step := <-l.StepStart:
			steps[step] = time.Now()
			l.printProgress(step.Name)
		case step := <-l.StepStop:
			startTime := steps[step]
			delete(steps, step)
			duration := time.Since(startTime)
			l.printRecord(Record{INFO, step.Component, step.Name + " took: " + duration.String()})
		case done := <-l.sync:
			l.flush()
			close(done)
		case <-l.quit:
			break For
		}
	}
	// after quit, print all records from chan
	l.flush()
}

func (l *LogBroker) flush() {
	for {
		select {
		case record := <-l.Records:
			l.printRecord(record)
		default:
			return
		}
	}
}

func (l *LogBroker) printPrefix() {
	fmt.Fprint(l.out, "[", time.Now().Format(time.Stamp), "] ")
}

func (l *LogBroker) printComponent(component string) {
	if component != "" {
		fmt.Fprint(l.out, "[", component, "] ")
	}
}

func (l *LogBroker) printRecord(record Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if record.Level > l.level {
		return
	}
	if !l.newline {
		fmt.Fprint(l.out, CLEARLINE)
	}
	l.printPrefix()
	l.printComponent(record.Component)
	if record.Level != INFO {
		fmt.Fprint(l.out, record.Level, ": ")
	}
	fmt.Fprintln(l.out, record.Message)
	l.newline = true
	if l.lastProgress != "" && !l.quiet {
		l.printPrefix()
		fmt.Fprint(l.out, l.lastProgress, "\r")
		l.newline = false
	}
}

func (l *LogBroker) printProgress(progress string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.quiet {
		return
	}
	l.printPrefix()
	fmt.Fprint(l.out, progress, "\r")
	l.lastProgress = progress
	l.newline = false
}

// Sync blocks until all pending records are printed.
func Sync() {
	done := make(chan struct{})
	defaultLogBroker.sync <- done
	<-done
}

// Shutdown prints all pending records and stops the broker. No logging
// is possible afterwards.
func Shutdown() {
	defaultLogBroker.quit <- true
	defaultLogBroker.wg.Wait()
}

var defaultLogBroker LogBroker

func init() {
	defaultLogBroker = LogBroker{
		Records:   make(chan Record, 8),
		Progress:  make(chan string),
		StepStart: make(chan Step),
		StepStop:  make(chan Step),
		sync:      make(chan chan struct{}),
		quit:      make(chan bool),
		wg:        &sync.WaitGroup{},
		out:       os.Stdout,
		level:     INFO,
	}
	defaultLogBroker.wg.Add(1)
	go defaultLogBroker.loop()
}
