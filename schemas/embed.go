// Package schemas holds the JSON Schema documents for the roles input file and
// saved tailoring snapshots.
package schemas

import "embed"

// Schema file names
const (
	Roles    = "roles.schema.json"
	Snapshot = "snapshot.schema.json"
)

// FS contains every *.schema.json file in this directory
//
//go:embed *.schema.json
var FS embed.FS
