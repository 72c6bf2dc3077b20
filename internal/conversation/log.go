package conversation

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/RidgetopAi/ridge-context/internal/core"
)

// BudgetLogEntry records one packing decision for later inspection.
type BudgetLogEntry struct {
	Timestamp        time.Time     `json:"ts"`
	ThreadID         core.ThreadID `json:"thread_id"`
	Model            string        `json:"model"`
	Budget           int           `json:"budget"`
	TotalTokens      int           `json:"total_tokens"`
	SystemTokens     int           `json:"system_tokens"`
	ToolTokens       int           `json:"tool_tokens"`
	Truncated        bool          `json:"truncated"`
	SegmentsIncluded int           `json:"segments_included"`
	SegmentsDropped  int           `json:"segments_dropped"`
}

// BudgetLog appends packing diagnostics to a JSONL file and reads them back
// newest-last. Safe for concurrent use.
type BudgetLog struct {
	baseDir string
	mu      sync.Mutex
}

// NewBudgetLog creates a BudgetLog rooted at the given directory. The log
// file itself is created on first write.
func NewBudgetLog(baseDir string) *BudgetLog {
	return &BudgetLog{baseDir: baseDir}
}

func (log *BudgetLog) path() string {
	return filepath.Join(log.baseDir, "budget.jsonl")
}

// Write appends one entry describing the given build.
func (log *BudgetLog) Write(threadID core.ThreadID, model string, result BuildResult) error {
	log.mu.Lock()
	defer log.mu.Unlock()

	if err := os.MkdirAll(log.baseDir, 0o755); err != nil {
		return err
	}

	file, err := os.OpenFile(log.path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	entry := BudgetLogEntry{
		Timestamp:        time.Now().UTC(),
		ThreadID:         threadID,
		Model:            model,
		Budget:           result.Budget,
		TotalTokens:      result.TotalTokens,
		SystemTokens:     result.SystemTokens,
		ToolTokens:       result.ToolTokens,
		Truncated:        result.Truncated,
		SegmentsIncluded: result.SegmentsIncluded,
		SegmentsDropped:  result.SegmentsDropped,
	}

	return json.NewEncoder(file).Encode(entry)
}

// ReadTail returns up to limit entries from the end of the log, oldest
// first. A missing or empty log yields no entries and no error. Lines that
// fail to parse are skipped.
func (log *BudgetLog) ReadTail(limit int) ([]BudgetLogEntry, error) {
	log.mu.Lock()
	defer log.mu.Unlock()

	file, err := os.Open(log.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if fileInfo.Size() == 0 {
		return nil, nil
	}

	lines, err := readLinesBackward(file, fileInfo.Size())
	if err != nil {
		return nil, err
	}

	var entries []BudgetLogEntry

	for i := len(lines) - 1; i >= 0 && len(entries) < limit; i-- {
		line := lines[i]
		if len(line) == 0 {
			continue
		}

		var entry BudgetLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}

		entries = append([]BudgetLogEntry{entry}, entries...)
	}

	return entries, nil
}

const logChunkSize = 8 * 1024

// readLinesBackward reads the whole file in chunks from the end and splits
// it into lines. Returned lines are in file order.
func readLinesBackward(file *os.File, fileSize int64) ([][]byte, error) {
	var allData []byte
	remaining := fileSize

	for remaining > 0 {
		readSize := int64(logChunkSize)
		if readSize > remaining {
			readSize = remaining
		}

		offset := remaining - readSize
		chunk := make([]byte, readSize)

		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			return nil, err
		}

		if _, err := io.ReadFull(file, chunk); err != nil {
			return nil, err
		}

		allData = append(chunk, allData...)
		remaining = offset
	}

	var lines [][]byte
	start := 0

	for i := 0; i < len(allData); i++ {
		if allData[i] == '\n' {
			if i > start {
				lines = append(lines, allData[start:i])
			}
			start = i + 1
		}
	}

	if start < len(allData) {
		lines = append(lines, allData[start:])
	}

	return lines, nil
}
