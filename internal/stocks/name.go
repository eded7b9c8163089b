package stocks

import (
	"sort"
	"strings"
)

// Listing decorations stripped from exchange names before searching.
var suffixes = []string{
	"Class A",
	"Global Limited",
	"Common Stock,",
	"Class A Common Stock,",
	"Agile Growth Corp. Warrant.",
	"Warrant",
	"Common Shares",
	"Acquisition",
	"SAIL Warrant.",
	"(Canada)",
	"(Bermuda)",
	"S.A.",
	"N.V. Common Stock",
	"(Holding Company) Common Stock",
	"Class A Common Stock New",
	"Class A Ordinary Shares",
	"PLC Ordinary Shares",
	"Ordinary Share",
	"Class A Common Stock",
	"(The) Common Stock",
	"Common Stock",
	"ADS",
	"ASA",
	"SE",
	"SA American Depositary Shares",
	"SA",
	"AG",
	"S.A. Sponsored ADR (Spain)",
	"Limited American Depositary Shares",
	"Class A Subordinate Voting Shares",
	"Depositary Shares",
	"PLC Common Stock",
	"(REIT)",
	"REIT",
	"American Depositary Shares",
	"(",
	"Corporation Class A Common Stock",
}

// Shorter suffixes are too ambiguous to match once the name is lower-cased.
const minLowerSuffix = 5

var punctuation = []string{",", ".", "(", ")"}

func init() {
	sort.SliceStable(suffixes, func(i, j int) bool {
		return len(suffixes[i]) > len(suffixes[j])
	})
}

func clean(name string) string {
	name = strings.TrimSpace(name)
	for _, p := range punctuation {
		name = strings.TrimSpace(strings.ReplaceAll(name, p, ""))
	}
	return name
}

// NormalizeName turns a raw listing name such as
// "Example Corp. Class A Common Stock," into a search query ("example corp").
// The result may be empty.
func NormalizeName(raw string) string {
	name := clean(raw)
	for _, s := range suffixes {
		if idx := strings.Index(name, s); idx != -1 {
			name = clean(name[:idx])
		}
	}

	name = strings.ToLower(name)
	for _, s := range suffixes {
		s = strings.ToLower(s)
		if len(s) < minLowerSuffix {
			continue
		}
		if idx := strings.Index(name, s); idx != -1 {
			name = clean(name[:idx])
		}
	}

	return clean(name)
}
