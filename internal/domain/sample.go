package domain

import "time"

// SampleInstruments returns the fixed seed set used to populate an empty
// catalog. Ids and timestamps are stable so repeated seeding is idempotent.
func SampleInstruments() []Instrument {
	return []Instrument{
		{
			ID:          "1",
			Type:        InstrumentTypeTicker,
			Code:        "AAPL",
			Name:        "Apple Inc.",
			Description: "Tecnología - Dispositivos electrónicos y software",
			AddedAt:     time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:          "2",
			Type:        InstrumentTypeISIN,
			Code:        "US0378331005",
			Name:        "Apple Inc.",
			Description: "ISIN code for Apple Inc. common stock",
			AddedAt:     time.Date(2024, 1, 16, 14, 20, 0, 0, time.UTC),
		},
		{
			ID:          "3",
			Type:        InstrumentTypeTicker,
			Code:        "MSFT",
			Name:        "Microsoft Corporation",
			Description: "Tecnología - Software y servicios en la nube",
			AddedAt:     time.Date(2024, 1, 17, 9, 15, 0, 0, time.UTC),
		},
		{
			ID:          "4",
			Type:        InstrumentTypeTicker,
			Code:        "GOOGL",
			Name:        "Alphabet Inc. Class A",
			Description: "Tecnología - Motor de búsqueda y publicidad digital",
			AddedAt:     time.Date(2024, 1, 18, 16, 45, 0, 0, time.UTC),
		},
		{
			ID:          "5",
			Type:        InstrumentTypeCUSIP,
			Code:        "037833100",
			Name:        "Apple Inc.",
			Description: "CUSIP code for Apple Inc. common stock",
			AddedAt:     time.Date(2024, 1, 19, 11, 30, 0, 0, time.UTC),
		},
		{
			ID:          "6",
			Type:        InstrumentTypeTicker,
			Code:        "TSLA",
			Name:        "Tesla, Inc.",
			Description: "Automotriz - Vehículos eléctricos y energía renovable",
			AddedAt:     time.Date(2024, 1, 20, 13, 0, 0, 0, time.UTC),
		},
	}
}
