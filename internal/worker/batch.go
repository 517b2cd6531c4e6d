package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Handler answers one batch request
type Handler[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Item is the outcome of one batch request
type Item[Req, Resp any] struct {
	Index    int
	Request  Req
	Response Resp
	Error    error
}

// GetError returns the error from the handler
func (i *Item[Req, Resp]) GetError() error {
	return i.Error
}

type batchJob[Req, Resp any] struct {
	index   int
	request Req
	handler Handler[Req, Resp]
}

func (j *batchJob[Req, Resp]) Execute(ctx context.Context) Result {
	resp, err := j.handler(ctx, j.request)
	return &Item[Req, Resp]{Index: j.index, Request: j.request, Response: resp, Error: err}
}

// BatchProcessor answers many requests concurrently
type BatchProcessor[Req, Resp any] struct {
	handler Handler[Req, Resp]
	pool    *Pool
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor[Req, Resp any](handler Handler[Req, Resp], concurrency int) *BatchProcessor[Req, Resp] {
	return &BatchProcessor[Req, Resp]{
		handler: handler,
		pool:    NewPool(concurrency),
	}
}

// Process answers every request; items come back in request order
func (b *BatchProcessor[Req, Resp]) Process(ctx context.Context, requests []Req) []*Item[Req, Resp] {
	jobs := make([]Job, len(requests))
	for i, req := range requests {
		jobs[i] = &batchJob[Req, Resp]{index: i, request: req, handler: b.handler}
	}

	results := b.pool.Run(ctx, jobs)

	items := make([]*Item[Req, Resp], len(results))
	for i, result := range results {
		if item, ok := result.(*Item[Req, Resp]); ok {
			items[i] = item
			continue
		}
		items[i] = &Item[Req, Resp]{Index: i, Request: requests[i], Error: result.GetError()}
	}
	return items
}

// ReadLinesFromFile reads the non-empty, non-comment lines of a file
func ReadLinesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadLines(file)
}

// ReadLines reads the non-empty lines of r, skipping lines starting with #
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}

	return lines, nil
}
