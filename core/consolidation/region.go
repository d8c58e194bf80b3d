package consolidation

import "strings"

var stateRegions = map[string]string{
	"wa": "west", "or": "west", "ca": "west", "nv": "west", "id": "west",
	"mt": "west", "wy": "west", "ut": "west", "co": "west",
	"az": "southwest", "nm": "southwest", "tx": "southwest", "ok": "southwest",
	"nd": "midwest", "sd": "midwest", "ne": "midwest", "ks": "midwest",
	"mn": "midwest", "ia": "midwest", "mo": "midwest", "wi": "midwest",
	"il": "midwest", "in": "midwest", "mi": "midwest", "oh": "midwest",
	"ar": "southeast", "la": "southeast", "ms": "southeast", "al": "southeast",
	"tn": "southeast", "ky": "southeast", "ga": "southeast", "fl": "southeast",
	"sc": "southeast", "nc": "southeast", "va": "southeast", "wv": "southeast",
	"me": "northeast", "nh": "northeast", "vt": "northeast", "ma": "northeast",
	"ri": "northeast", "ct": "northeast", "ny": "northeast", "nj": "northeast",
	"pa": "northeast", "de": "northeast", "md": "northeast", "dc": "northeast",
}

// DefaultRegion derives a coarse region from location tokens of the form
// "city_st" (e.g. "baltimore_md"). Unknown tokens fall back to "midwest",
// matching how dispatch treats the continental interior.
func DefaultRegion(location string) string {
	loc := strings.ToLower(strings.TrimSpace(location))
	if i := strings.LastIndexByte(loc, '_'); i >= 0 && i+1 < len(loc) {
		if r, ok := stateRegions[loc[i+1:]]; ok {
			return r
		}
	}
	return "midwest"
}
