package roster

import "github.com/yourusername/longshot/internal/models"

// League teams are a fixed table rather than a provider pull; franchises
// change far too slowly to justify a refresh path.
var leagueTeams = []models.Team{
	{Name: "Buffalo Bills", Abbreviation: "BUF", Division: "AFC East", Conference: "AFC"},
	{Name: "Miami Dolphins", Abbreviation: "MIA", Division: "AFC East", Conference: "AFC"},
	{Name: "New England Patriots", Abbreviation: "NE", Division: "AFC East", Conference: "AFC"},
	{Name: "New York Jets", Abbreviation: "NYJ", Division: "AFC East", Conference: "AFC"},
	{Name: "Baltimore Ravens", Abbreviation: "BAL", Division: "AFC North", Conference: "AFC"},
	{Name: "Cincinnati Bengals", Abbreviation: "CIN", Division: "AFC North", Conference: "AFC"},
	{Name: "Cleveland Browns", Abbreviation: "CLE", Division: "AFC North", Conference: "AFC"},
	{Name: "Pittsburgh Steelers", Abbreviation: "PIT", Division: "AFC North", Conference: "AFC"},
	{Name: "Houston Texans", Abbreviation: "HOU", Division: "AFC South", Conference: "AFC"},
	{Name: "Indianapolis Colts", Abbreviation: "IND", Division: "AFC South", Conference: "AFC"},
	{Name: "Jacksonville Jaguars", Abbreviation: "JAX", Division: "AFC South", Conference: "AFC"},
	{Name: "Tennessee Titans", Abbreviation: "TEN", Division: "AFC South", Conference: "AFC"},
	{Name: "Denver Broncos", Abbreviation: "DEN", Division: "AFC West", Conference: "AFC"},
	{Name: "Kansas City Chiefs", Abbreviation: "KC", Division: "AFC West", Conference: "AFC"},
	{Name: "Las Vegas Raiders", Abbreviation: "LV", Division: "AFC West", Conference: "AFC"},
	{Name: "Los Angeles Chargers", Abbreviation: "LAC", Division: "AFC West", Conference: "AFC"},
	{Name: "Dallas Cowboys", Abbreviation: "DAL", Division: "NFC East", Conference: "NFC"},
	{Name: "New York Giants", Abbreviation: "NYG", Division: "NFC East", Conference: "NFC"},
	{Name: "Philadelphia Eagles", Abbreviation: "PHI", Division: "NFC East", Conference: "NFC"},
	{Name: "Washington Commanders", Abbreviation: "WAS", Division: "NFC East", Conference: "NFC"},
	{Name: "Chicago Bears", Abbreviation: "CHI", Division: "NFC North", Conference: "NFC"},
	{Name: "Detroit Lions", Abbreviation: "DET", Division: "NFC North", Conference: "NFC"},
	{Name: "Green Bay Packers", Abbreviation: "GB", Division: "NFC North", Conference: "NFC"},
	{Name: "Minnesota Vikings", Abbreviation: "MIN", Division: "NFC North", Conference: "NFC"},
	{Name: "Atlanta Falcons", Abbreviation: "ATL", Division: "NFC South", Conference: "NFC"},
	{Name: "Carolina Panthers", Abbreviation: "CAR", Division: "NFC South", Conference: "NFC"},
	{Name: "New Orleans Saints", Abbreviation: "NO", Division: "NFC South", Conference: "NFC"},
	{Name: "Tampa Bay Buccaneers", Abbreviation: "TB", Division: "NFC South", Conference: "NFC"},
	{Name: "Arizona Cardinals", Abbreviation: "ARI", Division: "NFC West", Conference: "NFC"},
	{Name: "Los Angeles Rams", Abbreviation: "LAR", Division: "NFC West", Conference: "NFC"},
	{Name: "San Francisco 49ers", Abbreviation: "SF", Division: "NFC West", Conference: "NFC"},
	{Name: "Seattle Seahawks", Abbreviation: "SEA", Division: "NFC West", Conference: "NFC"},
}
