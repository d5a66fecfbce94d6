// Package scheduler runs a task list on a fixed number of goroutines.
//
// Two strategies produce the same output set:
//
//   - StrategyChunked splits the list into contiguous chunks of
//     max(1, n/(workers*4)) tasks and deals chunk i to worker i mod workers
//     up front. Assignment is static; idle workers do not steal.
//   - StrategyEach submits every task on its own to a pool limited to
//     workers concurrent executions and lets them finish in any order.
//
// Every task runs exactly once. A failing task yields an error result and
// never stops its worker or its siblings. Run returns only after all tasks
// have finished; there is no cancellation.
package scheduler
