package leagues

import "sort"

// AllLeagues is the sentinel league ID that fans a request out across every
// known league.
const AllLeagues = -1

type League struct {
	ID      int
	Name    string
	Country string
	Flag    string
}

var Known = map[int]League{
	39:  {ID: 39, Name: "Premier League", Country: "England", Flag: "🇬🇧"},
	140: {ID: 140, Name: "La Liga", Country: "Spain", Flag: "🇪🇸"},
	78:  {ID: 78, Name: "Bundesliga", Country: "Germany", Flag: "🇩🇪"},
	135: {ID: 135, Name: "Serie A", Country: "Italy", Flag: "🇮🇹"},
	61:  {ID: 61, Name: "Ligue 1", Country: "France", Flag: "🇫🇷"},
	88:  {ID: 88, Name: "Eredivisie", Country: "Netherlands", Flag: "🇳🇱"},
	144: {ID: 144, Name: "Jupiler Pro League", Country: "Belgium", Flag: "🇧🇪"},
	94:  {ID: 94, Name: "Primeira Liga", Country: "Portugal", Flag: "🇵🇹"},
	179: {ID: 179, Name: "Scottish Premiership", Country: "Scotland", Flag: "🏴"},
	203: {ID: 203, Name: "Super Lig", Country: "Turkey", Flag: "🇹🇷"},
	207: {ID: 207, Name: "Swiss Super League", Country: "Switzerland", Flag: "🇨🇭"},
	113: {ID: 113, Name: "Allsvenskan", Country: "Sweden", Flag: "🇸🇪"},
	119: {ID: 119, Name: "Danish Superliga", Country: "Denmark", Flag: "🇩🇰"},
	103: {ID: 103, Name: "Eliteserien", Country: "Norway", Flag: "🇳🇴"},
	106: {ID: 106, Name: "Ekstraklasa", Country: "Poland", Flag: "🇵🇱"},
	345: {ID: 345, Name: "Czech First League", Country: "Czech Republic", Flag: "🇨🇿"},
	128: {ID: 128, Name: "Austrian Bundesliga", Country: "Austria", Flag: "🇦🇹"},
	332: {ID: 332, Name: "Slovakian Super Liga", Country: "Slovakia", Flag: "🇸🇰"},
	271: {ID: 271, Name: "Nemzeti Bajnokság I", Country: "Hungary", Flag: "🇭🇺"},
}

// IDs returns the known league IDs in ascending order, used to fan an
// AllLeagues request out into per-league calls.
func IDs() []int {
	ids := make([]int, 0, len(Known))
	for id := range Known {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
