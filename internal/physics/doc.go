// Package physics provides the tendency equations of the toy atmosphere.
//
// [Atmosphere] implements [dynamo.System]: given a full state it returns the
// instantaneous rate of change of pressure, temperature and both wind
// components. It is a pure function of its input and can be tested without
// an integrator:
//
//	atm := physics.NewAtmosphere(dynamo.DefaultParams())
//	k := atm.Derive(state)
//	dUdt := k.WindU.At(10, 10)
package physics
