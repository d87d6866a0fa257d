package api

// Product identifies this service in version reports.
const Product = "cashx-engine"

// Build metadata, stamped by the release pipeline through -ldflags;
// a plain `go build` leaves the dev defaults in place.
var (
	EngineVersion = "dev"
	GitCommit     = "unknown"
	BuildTime     = "unknown"
)

func buildInfo() VersionInfo {
	return VersionInfo{
		Product:       Product,
		EngineVersion: EngineVersion,
		GitCommit:     GitCommit,
		BuildTime:     BuildTime,
	}
}
