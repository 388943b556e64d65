// ABOUTME: Build version constants
// ABOUTME: Identifies the player in logs and the version flag
package version

const (
	// Version is the semantic version of this build.
	Version = "0.1.0"

	// Product is the product name reported to the host.
	Product = "pcmsink"

	// Manufacturer identifies the project.
	Manufacturer = "emmef"
)

// String returns the full product identification.
func String() string {
	return Product + " " + Version
}
