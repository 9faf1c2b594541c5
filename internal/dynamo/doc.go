// Package dynamo provides the core primitives shared by every part of
// chaosfield.
//
// The package defines the plain data types of the double-pendulum model:
//
//   - [Pendulum]: one link (length, mass, angle, canonical momentum)
//   - [Pair]: the two coupled links, first attached to the pivot
//   - [Params]: gravity, link lengths and masses, field step count
//   - [Rates]: instantaneous time-derivative of a pair
//   - [State]: flat vector view of a pair for analysis and storage
//
// # Example
//
//	pair, err := dynamo.NewPair([2]float64{math.Pi / 2, math.Pi / 2},
//	    params.Lengths, params.Masses)
//	if err != nil {
//	    return err
//	}
//
// # Ownership
//
// A Pair is a value. Whoever creates it owns it; copying a Pair copies the
// whole state, so two owners never alias the same links.
package dynamo
