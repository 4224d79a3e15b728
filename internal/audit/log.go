package audit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"vigil/internal/platform/metrics"
)

const logFileName = "audit.log"

// Log is the append-only encrypted event log. Each record is serialized,
// encrypted as one unit, and appended as its own line, so a corrupted line
// never invalidates the rest of the file. A mutex serializes appends within
// the process instead of leaning on O_APPEND write atomicity; sharing the
// file across processes is not supported.
type Log struct {
	mu      sync.Mutex
	path    string
	cipher  *Cipher
	metrics *metrics.Metrics
}

// NewLog binds the log file inside the keyring's directory.
func NewLog(keyring *Keyring, m *metrics.Metrics) *Log {
	return &Log{
		path:    filepath.Join(keyring.Dir(), logFileName),
		cipher:  keyring.Cipher(),
		metrics: m,
	}
}

// Append encrypts the event's line form and appends it to the log file. The
// file is only ever opened in append mode; existing content is never touched.
func (l *Log) Append(event Event) error {
	token, err := l.cipher.Encrypt([]byte(event.encode()))
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		l.metrics.AuditAppendErrors.Inc()
		return fmt.Errorf("audit: open log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(token + "\n"); err != nil {
		l.metrics.AuditAppendErrors.Inc()
		return fmt.Errorf("audit: append record: %w", err)
	}
	l.metrics.AuditAppends.Inc()
	return nil
}

// ReadAll decrypts the log line by line in file order, which equals append
// order. Lines that fail to decrypt or parse are skipped rather than
// aborting the read: one damaged record must not take the history after it
// down with it. A missing log file yields an empty slice.
func (l *Log) ReadAll() ([]Event, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("audit: open log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		plaintext, err := l.cipher.Decrypt(line)
		if err != nil {
			l.metrics.AuditSkippedLines.Inc()
			continue
		}
		event, err := parseEvent(string(plaintext))
		if err != nil {
			l.metrics.AuditSkippedLines.Inc()
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit: read log: %w", err)
	}
	return events, nil
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }
