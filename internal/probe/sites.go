package probe

import "strings"

// Site is one public signup page worth probing. The probe logic is the same
// for every site, only the page and the form field name differ.
type Site struct {
	Name       string
	SignupURL  string
	EmailField string // form field carrying the address, default "email"
}

// DefaultSites returns the built-in site catalog.
func DefaultSites() []Site {
	return []Site{
		{Name: "spotify", SignupURL: "https://www.spotify.com/de/signup/", EmailField: "email"},
		{Name: "onlyfans", SignupURL: "https://onlyfans.com/", EmailField: "email"},
	}
}

// filterSites keeps the catalog entries listed in names. An empty names
// keeps everything.
func filterSites(sites []Site, names []string) []Site {
	if len(names) == 0 {
		return sites
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}
	var out []Site
	for _, s := range sites {
		if _, ok := want[s.Name]; ok {
			out = append(out, s)
		}
	}
	return out
}
