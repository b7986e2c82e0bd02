package future2

import (
	"context"
	"errors"
	"os"
	"sync"
)

const workers = 4

type file struct {
	index int
	path  string
	data  []byte
}

func sendFiles(ctx context.Context, files []file) (<-chan file, <-chan error, error) {
	out := make(chan file)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for _, f := range files {
			select {
			case out <- f:
			case <-ctx.Done():
				errc <- errors.New("pipeline cancelled")
				return
			}
		}
	}()
	return out, errc, nil
}

func readWorker(ctx context.Context, in <-chan file, data [][]byte) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for f := range in {
			b, err := os.ReadFile(f.path)
			if err != nil {
				errc <- err
				return
			}
			// Each index is only ever handed to one worker
			data[f.index] = b
		}
	}()
	return errc, nil
}

func writeWorker(ctx context.Context, in <-chan file) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for f := range in {
			if err := writeFile(f.path, f.data); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

// firstError fans the stage error channels into one and returns the first
// error any stage reports, cancelling the rest of the pipeline. It returns
// once every stage has finished.
func firstError(cancel context.CancelFunc, stages []<-chan error) error {
	var wg sync.WaitGroup
	merged := make(chan error)
	for _, errc := range stages {
		wg.Add(1)
		go func(errc <-chan error) {
			defer wg.Done()
			for err := range errc {
				merged <- err
			}
		}(errc)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	var first error
	for err := range merged {
		if err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

type worker func(context.Context, <-chan file) (<-chan error, error)

func runPipeline(files []file, w worker) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in, errc, err := sendFiles(ctx, files)
	if err != nil {
		return err
	}
	stages := []<-chan error{errc}

	for i := 0; i < workers; i++ {
		errc, err := w(ctx, in)
		if err != nil {
			return err
		}
		stages = append(stages, errc)
	}

	return firstError(cancel, stages)
}

// readFiles returns the contents of paths in the same order.
func readFiles(paths []string) ([][]byte, error) {
	files := make([]file, len(paths))
	for i, p := range paths {
		files[i] = file{index: i, path: p}
	}

	data := make([][]byte, len(paths))
	if err := runPipeline(files, func(ctx context.Context, in <-chan file) (<-chan error, error) {
		return readWorker(ctx, in, data)
	}); err != nil {
		return nil, err
	}

	return data, nil
}

func writeFiles(files []file) error {
	return runPipeline(files, writeWorker)
}
