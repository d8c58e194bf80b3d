// Package scheduler turns a rolling planning horizon into a sequence of
// optimized routes for one driver, one availability window at a time.
package scheduler
