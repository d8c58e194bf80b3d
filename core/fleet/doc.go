// Package fleet runs the continuous fleet-utilization loop: on every tick it
// re-evaluates each active driver, scores available loads as opportunities,
// picks an assignment strategy, and routes the winning proposal through the
// automation gate before committing it to the load and driver stores.
package fleet
