package calibration

// Default returns the built-in parameter bundle. A calibration file, when
// present, overrides these values wholesale.
func Default() *Bundle {
	return &Bundle{
		Version: "2025.1",
		Stats: map[string]StatModel{
			"passing_touchdowns": {
				Kind: StatCounting,
				Means: map[string]map[Tier]float64{
					"QB": {TierElite: 36, TierStarter: 25, TierDepth: 10},
				},
				Dispersion: 1.6,
			},
			"interceptions_thrown": {
				Kind: StatCounting,
				Means: map[string]map[Tier]float64{
					"QB": {TierElite: 9, TierStarter: 12, TierDepth: 8},
				},
				Dispersion: 1.4,
			},
			"passing_yards": {
				Kind: StatContinuous,
				Means: map[string]map[Tier]float64{
					"QB": {TierElite: 4500, TierStarter: 3700, TierDepth: 1800},
				},
				VarCoef: 0.12,
			},
			"rushing_yards": {
				Kind: StatContinuous,
				Means: map[string]map[Tier]float64{
					"RB": {TierElite: 1300, TierStarter: 900, TierDepth: 400},
					"QB": {TierElite: 550, TierStarter: 300, TierDepth: 120},
					"WR": {TierElite: 120, TierStarter: 60, TierDepth: 20},
				},
				VarCoef: 0.22,
			},
			"rushing_touchdowns": {
				Kind: StatCounting,
				Means: map[string]map[Tier]float64{
					"RB": {TierElite: 12, TierStarter: 7, TierDepth: 3},
					"QB": {TierElite: 6, TierStarter: 3, TierDepth: 1},
				},
				Dispersion: 1.5,
			},
			"receiving_yards": {
				Kind: StatContinuous,
				Means: map[string]map[Tier]float64{
					"WR": {TierElite: 1350, TierStarter: 900, TierDepth: 400},
					"TE": {TierElite: 1000, TierStarter: 650, TierDepth: 250},
					"RB": {TierElite: 500, TierStarter: 300, TierDepth: 120},
				},
				VarCoef: 0.2,
			},
			"receiving_touchdowns": {
				Kind: StatCounting,
				Means: map[string]map[Tier]float64{
					"WR": {TierElite: 10, TierStarter: 6, TierDepth: 2},
					"TE": {TierElite: 8, TierStarter: 4, TierDepth: 1.5},
					"RB": {TierElite: 3, TierStarter: 1.5, TierDepth: 0.5},
				},
				Dispersion: 1.4,
			},
			"receptions": {
				Kind: StatCounting,
				Means: map[string]map[Tier]float64{
					"WR": {TierElite: 105, TierStarter: 75, TierDepth: 35},
					"TE": {TierElite: 85, TierStarter: 55, TierDepth: 25},
					"RB": {TierElite: 60, TierStarter: 35, TierDepth: 15},
				},
				Dispersion: 2.0,
			},
			"sacks": {
				Kind: StatCounting,
				Means: map[string]map[Tier]float64{
					"EDGE": {TierElite: 14, TierStarter: 8, TierDepth: 3},
					"DT":   {TierElite: 9, TierStarter: 5, TierDepth: 2},
					"LB":   {TierElite: 8, TierStarter: 4, TierDepth: 1.5},
				},
				Dispersion: 1.5,
			},
		},
		Awards: map[string]AwardModel{
			"mvp": {
				Rates:             map[Tier]float64{TierElite: 0.12, TierStarter: 0.015, TierDepth: 0.001},
				EligiblePositions: []string{"QB", "RB", "WR"},
			},
			"opoy": {
				Rates:             map[Tier]float64{TierElite: 0.08, TierStarter: 0.01, TierDepth: 0.001},
				EligiblePositions: []string{"QB", "RB", "WR", "TE"},
			},
			"dpoy": {
				Rates:             map[Tier]float64{TierElite: 0.09, TierStarter: 0.012, TierDepth: 0.001},
				EligiblePositions: []string{"EDGE", "DT", "LB", "CB", "S"},
			},
			"roy": {
				Rates: map[Tier]float64{TierElite: 0.2, TierStarter: 0.04, TierDepth: 0.005},
			},
			"championship": {
				Rates: map[Tier]float64{TierElite: 0.09, TierStarter: 0.045, TierDepth: 0.03},
			},
		},
		Decay: DecayParams{
			CareerStageDecay:    0.92,
			LeagueParity:        0.85,
			HorizonSeasons:      12,
			TypicalCareerLength: 14,
		},
		Dependence: []DependenceRule{
			// a player's stat season and that same player's team succeeding
			{KindA: "player_stat_threshold", KindB: "team_market", SameEntity: true, Factor: 1.25},
			{KindA: "player_award", KindB: "team_market", SameEntity: true, Factor: 1.35},
			{KindA: "player_stat_threshold", KindB: "team_playoff", SameEntity: true, Factor: 1.2},
			{KindA: "player_award", KindB: "player_stat_threshold", SameEntity: true, Factor: 1.4},
			// an any-player cohort clause barely interacts with one team's market
			{KindA: "wildcard_cohort", KindB: "team_market", SameEntity: false, Factor: 0.95},
			{KindA: "team_market", KindB: "team_market", SameEntity: false, Factor: 0.9},
		},
		Scalings: []MarketScaling{
			{From: "super_bowl", To: "conference", Factor: 1.9},
			{From: "conference", To: "super_bowl", Factor: 0.52},
			{From: "super_bowl", To: "division", Factor: 2.8},
			{From: "division", To: "super_bowl", Factor: 0.35},
			{From: "division", To: "playoffs", Factor: 1.9},
			{From: "conference", To: "playoffs", Factor: 3.5},
			{From: "super_bowl", To: "playoffs", Factor: 6.0},
		},
		Bounds: Bounds{
			ClampMinPct:         0.1,
			ClampMaxPct:         99.0,
			MonotonicityDamping: 0.6,
			EpsilonPct:          0.5,
		},
		CohortRates: map[string]float64{
			"any_team_perfect_season":   0.35,
			"any_team_winless_season":   0.45,
			"any_qb_fifty_td":           4.0,
			"any_rb_two_thousand_yards": 6.0,
		},
	}
}
