package importer

import "strings"

// SourceUnknown tags blocks whose dump filename matched no known registry.
// Such blocks are still processed; the marker propagates as a literal value.
const SourceUnknown = "unknown"

// SourceForFile maps a dump filename to its owning registry. The four
// prefix checks run before the lacnic substring check so a name like
// "arin.lacnic-mirror.db" stays attributed to its prefix registry.
func SourceForFile(filename string) string {
	switch {
	case strings.HasPrefix(filename, "afrinic"):
		return "afrinic"
	case strings.HasPrefix(filename, "apnic"):
		return "apnic"
	case strings.HasPrefix(filename, "arin"):
		return "arin"
	case strings.HasPrefix(filename, "ripe"):
		return "ripe"
	case strings.Contains(filename, "lacnic"):
		return "lacnic"
	}
	return SourceUnknown
}
