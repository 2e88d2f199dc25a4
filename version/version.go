// Package version carries build information, set through -ldflags -X.
package version

const Version = "0.1.0"

var (
	// Meta is a suffix such as "dev" or "rc1", empty for releases.
	Meta = "dev"

	// VersionWithMeta is Version with Meta appended.
	VersionWithMeta = withMeta(Version, Meta)

	Commit string
	Date   string
)

func withMeta(version, meta string) string {
	if meta == "" {
		return version
	}
	return version + "-" + meta
}
