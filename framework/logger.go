package framework

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

type Logger interface {
	Println(args ...interface{})
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Println(args ...interface{})                {}
func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger is used internally to record all output from a test scope. See comments on
// ldtest.(*T).DebugLogger() for the rules of logging in parent/child scopes.
type CapturingLogger struct {
	output   []CapturedMessage
	children []*CapturingLogger
	lock     sync.Mutex
}

func (l *CapturingLogger) Println(args ...interface{}) {
	m := strings.TrimRight(fmt.Sprintln(args...), "\r\n") // Sprintln appends a newline
	l.append(CapturedMessage{Time: time.Now(), Message: m})
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.append(CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
}

func (l *CapturingLogger) append(m CapturedMessage) {
	var children []*CapturingLogger
	l.lock.Lock()
	if len(l.children) == 0 {
		l.output = append(l.output, m)
	} else {
		children = append([]*CapturingLogger(nil), l.children...)
	}
	l.lock.Unlock()
	for _, c := range children {
		c.append(m)
	}
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

func (l *CapturingLogger) AddChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	l.children = append(l.children, child)
	output := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	child.lock.Lock()
	child.output = append(output, child.output...)
	child.lock.Unlock()
}

func (l *CapturingLogger) RemoveChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	for i, c := range l.children {
		if c == child {
			l.children = append(l.children[0:i], l.children[i+1:]...)
			break
		}
	}
	l.lock.Unlock()
}

func (output CapturedOutput) ToString(prefix string) string {
	lines := make([]string, 0, len(output))
	for _, m := range output {
		lines = append(lines, formatLine(prefix, m.Time, m.Message))
	}
	return strings.Join(lines, "\n")
}

func formatLine(prefix string, t time.Time, message string) string {
	return fmt.Sprintf("%s[%s] %s", prefix, t.Format(timestampFormat), message)
}

// WriterLogger writes each message as a timestamped line. It is what backs the execution log.
type WriterLogger struct {
	w    io.Writer
	lock sync.Mutex
}

func NewWriterLogger(w io.Writer) *WriterLogger {
	return &WriterLogger{w: w}
}

func (l *WriterLogger) Println(args ...interface{}) {
	l.write(strings.TrimRight(fmt.Sprintln(args...), "\r\n"))
}

func (l *WriterLogger) Printf(message string, args ...interface{}) {
	l.write(fmt.Sprintf(message, args...))
}

func (l *WriterLogger) write(message string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = fmt.Fprintln(l.w, formatLine("", time.Now(), message))
}

type multiLogger []Logger

// MultiLogger sends every message to all of the given loggers; nil entries are ignored.
func MultiLogger(loggers ...Logger) Logger {
	var ret multiLogger
	for _, l := range loggers {
		if l != nil {
			ret = append(ret, l)
		}
	}
	return ret
}

func (m multiLogger) Println(args ...interface{}) {
	for _, l := range m {
		l.Println(args...)
	}
}

func (m multiLogger) Printf(message string, args ...interface{}) {
	for _, l := range m {
		l.Printf(message, args...)
	}
}

type prefixedLogger struct {
	base   Logger
	prefix string
}

func LoggerWithPrefix(baseLogger Logger, prefix string) Logger {
	return prefixedLogger{baseLogger, prefix}
}

func (p prefixedLogger) Println(args ...interface{}) {
	p.base.Println(append([]interface{}{p.prefix}, args...)...)
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.base.Printf(p.prefix+message, args...)
}
