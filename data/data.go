// README: Static zone, distance and preset data compiled into the binaries.
package data

import "embed"

// FS holds zones.geojson, matrix.json and presets.json. Sources addressed as
// embed://<name> are read from here.
//
//go:embed zones.geojson matrix.json presets.json
var FS embed.FS
