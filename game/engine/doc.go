// Package engine provides the puzzle logic of the rail connection game.
//
// The engine package implements:
//   - The board model: an N x N grid of terrain cells (N is 5 or 7)
//   - Direction algebra mapping a rail orientation to its two open ends
//   - The compatibility table deciding which rail may be placed over which terrain
//   - The placement state machine applied on every player interaction
//   - The connectivity checker that decides whether the puzzle is solved
//
// Core Types:
//
// Board holds the cells. Engine is the main contract for game operations,
// implemented by GameEngine. MapDefinition describes an authored layout as it
// is read from a map catalog.
//
// Usage:
//
//	eng, err := engine.NewEngineFromMap(def)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := eng.Interact(engine.Position{X: 1, Y: 2})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.After.Terrain, result.Solved)
//
// Game Rules:
//
// Open ground cycles through vertical straight, horizontal straight and the four
// curve bends. Mountains and bridges convert once into mountain and bridge rails
// and keep their orientation. Oases never change. The board is solved when no
// unconverted terrain is left, no rail sits in a corner, straight pieces on the
// border run along it, and every open end meets a rail that connects back.
package engine
