// Package consolidation finds feasible multi-load bundles for a single
// vehicle, sequences their stops, validates hours-of-service legality and
// scores the resulting routes for revenue, efficiency and driver-preference
// fit. It is a pure library: distances come from an injected estimator and
// nothing here touches the network or disk.
package consolidation
