package process

import (
	"bufio"
	"strings"
	"sync"
)

const maxLineSize = 1024 * 1024

// LineFunc receives one output line without its terminator
type LineFunc func(stream, line string)

// ErrorFunc receives a read failure on a stream
type ErrorFunc func(stream string, err error)

// Pump reads every stream of h line by line on its own goroutine.
// Streams are closed once drained. The returned channel is closed
// after all streams have reached end of output.
func Pump(h *Handle, onLine LineFunc, onErr ErrorFunc) <-chan struct{} {
	drained := make(chan struct{})

	var wg sync.WaitGroup
	for _, s := range h.Streams() {
		wg.Add(1)
		go func(s Stream) {
			defer wg.Done()
			defer s.Reader.Close()

			scanner := bufio.NewScanner(s.Reader)
			scanner.Buffer(make([]byte, 64*1024), maxLineSize)
			for scanner.Scan() {
				onLine(s.Name, strings.TrimRight(scanner.Text(), "\r"))
			}
			if err := scanner.Err(); err != nil && !streamClosed(err) && onErr != nil {
				onErr(s.Name, err)
			}
		}(s)
	}

	go func() {
		wg.Wait()
		close(drained)
	}()
	return drained
}
