package scheduler

import "github.com/backmassage/pixelbatch/internal/task"

// chunksPerWorker is how many chunks each worker receives on average. More
// chunks smooth out uneven image sizes; fewer cut per-chunk overhead.
const chunksPerWorker = 4

// ChunkSize returns max(1, n/(workers*4)).
func ChunkSize(n, workers int) int {
	if workers < 1 {
		workers = 1
	}
	size := n / (workers * chunksPerWorker)
	if size < 1 {
		return 1
	}
	return size
}

// Partition splits tasks into contiguous chunks of size (the last chunk may
// be shorter). Chunks share the backing array with tasks.
func Partition(tasks []task.Task, size int) [][]task.Task {
	if size < 1 {
		size = 1
	}
	chunks := make([][]task.Task, 0, (len(tasks)+size-1)/size)
	for start := 0; start < len(tasks); start += size {
		end := start + size
		if end > len(tasks) {
			end = len(tasks)
		}
		chunks = append(chunks, tasks[start:end:end])
	}
	return chunks
}
