// Package config loads the map catalogs of the rail puzzle.
//
// The config package handles:
//   - Reading catalogs from JSON and YAML files
//   - Validating every map before it can be played
//   - Map lookup by difficulty and ID, and uniform random selection
//   - Catalog validation for the command line
//
// Catalog Format:
//
// A catalog groups maps by difficulty. Every key of a map other than id and name is a
// tile coordinate "x,y" whose value is "terrain" or "terrain,orientation". A trailing
// ".png" on the terrain name is accepted. Coordinates that are not listed are open ground.
//
//	{
//	  "maps": [
//	    {"difficulty": "easy", "maps": [
//	      {"id": 1, "name": "Ring", "0,0": "oasis.png", "1,1": "mountain.png,down"}
//	    ]}
//	  ]
//	}
//
// Usage:
//
//	manager, err := config.NewManager("maps")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	def, err := manager.RandomMap(engine.Easy)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	maps, err := manager.ListMaps()
package config
