package order

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/hoavien/restaurant-bot/internal/logger"
	"github.com/hoavien/restaurant-bot/internal/models"
)

// Log is the append-only confirmed-order log: one JSON record per line.
// Appends are serialized so concurrent confirms cannot interleave partial
// lines.
type Log struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
}

func NewLog(path string, log *logger.Logger) *Log {
	return &Log{path: path, log: log.With("service", "OrderLog")}
}

// Append writes one record to the end of the log.
func (l *Log) Append(rec models.ConfirmedOrder) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrLogWrite, err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open: %v", ErrLogWrite, err)
	}
	defer f.Close()

	if _, err := f.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("%w: write: %v", ErrLogWrite, err)
	}
	l.log.Info("order appended to log", "order_id", rec.OrderID, "total", rec.TotalPayment)
	return nil
}

// ReadUser returns the user's confirmed orders, newest first, at most limit.
// Malformed lines are skipped; a log file that does not exist yet is simply an
// empty history.
func (l *Log) ReadUser(userID string, limit int) ([]models.ConfirmedOrder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open: %v", ErrLogRead, err)
	}
	defer f.Close()

	var records []models.ConfirmedOrder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec models.ConfirmedOrder
		if err := json.Unmarshal(line, &rec); err != nil {
			l.log.Warn("skipping malformed order log line", "error", err)
			continue
		}
		if rec.UserID == userID {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan: %v", ErrLogRead, err)
	}

	// Timestamps are "2006-01-02 15:04:05", so a lexical sort is a time sort.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
