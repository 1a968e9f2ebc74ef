package pdfinspect

import "strings"

// scanningDeviceSignatures are case-insensitive substrings of a PDF's
// Producer/Creator metadata that indicate the file was produced by a
// physical scanner rather than exported from a document editor (spec
// §4.2).
var scanningDeviceSignatures = []string{
	"hp digital sending",
	"ricoh",
	"xerox",
	"canon",
	"epson",
	"scanner",
	"scan",
}

func hasScanningDeviceSignature(producer, creator string) bool {
	combined := strings.ToLower(producer + " " + creator)
	for _, sig := range scanningDeviceSignatures {
		if strings.Contains(combined, sig) {
			return true
		}
	}
	return false
}
