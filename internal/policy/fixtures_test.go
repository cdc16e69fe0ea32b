package policy

import "github.com/theirongolddev/edcost/internal/model"

// workedExample is the reference program: 54,100 USD per year at a 26,000 baseline.
func workedExample() model.Program {
	return model.Program{
		Country:         "Germany",
		City:            "Munich",
		Institution:     "TU Munich",
		Program:         "Computer Science",
		Level:           model.LevelMaster,
		DurationYears:   2,
		TuitionUSD:      20000,
		RentUSD:         1000,
		VisaFeeUSD:      500,
		InsuranceUSD:    800,
		LivingCostIndex: 80,
		ExchangeRate:    0.92,
	}
}

func program(country string, level model.Level, tuition, rent, index float64) model.Program {
	return model.Program{
		Country:         country,
		City:            country + " City",
		Institution:     country + " University",
		Program:         "Economics",
		Level:           level,
		DurationYears:   2,
		TuitionUSD:      tuition,
		RentUSD:         rent,
		VisaFeeUSD:      200,
		InsuranceUSD:    600,
		LivingCostIndex: index,
		ExchangeRate:    1,
	}
}

// samplePrograms has odd-sized level groups so each group median is an actual member.
func samplePrograms() []model.Program {
	return []model.Program{
		program("USA", model.LevelMaster, 45000, 2200, 100),
		program("Germany", model.LevelMaster, 500, 900, 70),
		program("UK", model.LevelMaster, 28000, 1500, 85),
		program("USA", model.LevelBachelor, 38000, 1800, 95),
		program("India", model.LevelBachelor, 3000, 300, 30),
		program("Germany", model.LevelBachelor, 300, 800, 68),
		program("Canada", model.LevelPhD, 12000, 1300, 72),
	}
}
