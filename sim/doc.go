// Package sim provides the core multi-agent crowd simulation engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - agent.go: Agents state container (circular and three-circle models)
//   - tasks.go: The per-step update pipeline (forces, steering, integration)
//   - simulator.go: The main loop, the event queue, and agent spawning
//
// # Architecture
//
// Agent motion follows a social force model: each step sums the adjusting
// force toward the target direction, anticipatory social forces between
// agents, contact forces during overlap, and a random fluctuation, then
// integrates with an adaptive velocity Verlet scheme. Steering directions
// come from precomputed floor fields; see the sim/navigation sub-package.
//
// Supporting sub-packages:
//   - sim/geometry: vectors, wall segments, polygons, rasterization
//   - sim/navigation: fast marching distance maps and direction fields
//   - sim/storage: SQLite result store and compressed trajectory streams
//   - sim/plotting: trajectory and field plots
//
// # Determinism
//
// Two runs with the same master seed and configuration produce identical
// results. Randomness is partitioned per subsystem (PartitionedRNG), pair
// sweeps iterate in a fixed order (BlockList), and simultaneous events are
// ordered by schedule sequence.
package sim
