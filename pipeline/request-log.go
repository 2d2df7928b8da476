package pipeline

import (
	"os"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// RequestRecord captures one served recommendation request.
type RequestRecord struct {
	UserCode int
	TopN     int
	RerankK  int
	UnixTime int64
}

// RequestLog appends request records to a msgpack stream file through
// a background worker, so serving is never blocked on disk.
type RequestLog struct {
	Filename  string
	BatchSize int
	queue     chan RequestRecord
	stopFlag  chan struct{}
	wg        sync.WaitGroup
	lock      sync.Mutex
	file      *os.File
}

// NewRequestLog opens (or creates) the log file and starts the worker.
func NewRequestLog(filename string, batchSize int) (*RequestLog, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	l := &RequestLog{
		Filename:  filename,
		BatchSize: batchSize,
		queue:     make(chan RequestRecord, batchSize*2),
		stopFlag:  make(chan struct{}),
		file:      file,
	}

	l.wg.Add(1)
	go l.worker()

	return l, nil
}

// Log queues one record; a stopped log discards it.
func (l *RequestLog) Log(record RequestRecord) {
	select {
	case l.queue <- record:
	case <-l.stopFlag:
	}
}

func (l *RequestLog) worker() {
	defer l.wg.Done()

	batch := make([]RequestRecord, 0, l.BatchSize)

	for {
		select {
		case record := <-l.queue:
			batch = append(batch, record)

			if len(batch) >= l.BatchSize {
				l.writeBatch(batch)
				batch = make([]RequestRecord, 0, l.BatchSize)
			}

		case <-l.stopFlag:
			// Drain whatever was queued before the stop signal.
			for {
				select {
				case record := <-l.queue:
					batch = append(batch, record)
					continue
				default:
				}
				break
			}
			if len(batch) > 0 {
				l.writeBatch(batch)
			}
			return
		}
	}
}

func (l *RequestLog) writeBatch(batch []RequestRecord) {
	l.lock.Lock()
	defer l.lock.Unlock()

	for _, record := range batch {
		data, err := msgpack.Marshal(record)
		if err != nil {
			continue
		}
		l.file.Write(data)
	}

	l.file.Sync()
}

// Stop flushes pending records and closes the file.
func (l *RequestLog) Stop() {
	close(l.stopFlag)
	l.wg.Wait()

	l.lock.Lock()
	defer l.lock.Unlock()
	l.file.Close()
}

// ReadRequestLog decodes every record from a log file.
func ReadRequestLog(filename string) ([]RequestRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []RequestRecord
	decoder := msgpack.NewDecoder(file)

	for {
		var record RequestRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	return records, nil
}
