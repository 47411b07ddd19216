// Package dynamo provides the core types of the atmospheric time-stepping engine.
//
// The package defines the data model shared by every other package:
//
//   - [Params]: immutable grid geometry (nx, ny, dx, dy)
//   - [Field]: dense nx × ny array of float64
//   - [State]: pressure, temperature and the two wind components at one instant
//   - [System]: tendency evaluation (dS/dt = f(S))
//   - [Integrator]: advances a state by one time step
//   - [Enforcer]: boundary rewriting after a step
//   - [Initializer]: produces the initial state of a run
//
// # Example
//
//	p := dynamo.DefaultParams()
//	x0, _ := initial.NewAnalytic().Initialize(p)
//	x1 := integrators.NewRK4().Step(physics.NewAtmosphere(p), x0, 60)
//	boundary.NewPeriodic(boundary.Ghost).Apply(x1)
//
// # Thread Safety
//
// States and fields are plain values with no locking. A state returned by an
// integrator is owned by the caller; share it read-only or Clone it.
package dynamo
