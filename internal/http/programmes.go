package httpx

// Programme is one entry of the static programme catalogue.
type Programme struct {
	Slug       string
	Name       string
	Summary    string
	Highlights []string
}

// DefaultProgrammes is the catalogue shown on the home page.
func DefaultProgrammes() []Programme {
	return []Programme{
		{
			Slug:    "expats",
			Name:    "Expats",
			Summary: "Employment and residence passes for foreign professionals and their families.",
			Highlights: []string{
				"Employment Pass categories I to III",
				"Dependant and long-term social visit passes",
			},
		},
		{
			Slug:    "mtep",
			Name:    "MTEP",
			Summary: "Entrepreneur pass for founders building technology start-ups.",
			Highlights: []string{
				"New entrepreneur and established entrepreneur tracks",
				"Business plan review by the programme office",
			},
		},
		{
			Slug:    "de-rantau",
			Name:    "DE Rantau",
			Summary: "Professional visit pass for digital nomads working remotely.",
			Highlights: []string{
				"Twelve-month pass, renewable once",
				"Access to partner hubs",
			},
		},
	}
}

func findProgramme(programmes []Programme, slug string) (*Programme, bool) {
	for i := range programmes {
		if programmes[i].Slug == slug {
			return &programmes[i], true
		}
	}
	return nil, false
}
