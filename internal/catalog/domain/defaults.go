package domain

// DefaultCatalog is served when no catalog file is present.
func DefaultCatalog() Catalog {
	return Catalog{
		Operators: []Operator{
			{Key: "grameenphone", Name: "Grameenphone", Code: "GP", Commission: 2.5},
			{Key: "robi", Name: "Robi", Code: "ROBI", Commission: 2.0},
			{Key: "banglalink", Name: "Banglalink", Code: "BL", Commission: 2.0},
			{Key: "airtel", Name: "Airtel", Code: "AIRTEL", Commission: 1.8},
			{Key: "teletalk", Name: "Teletalk", Code: "TT", Commission: 1.5},
		},
		Providers: []BillProvider{
			{ID: 1, Code: "DESCO", Name: "DESCO", Category: "electricity", MinAmount: 50, MaxAmount: 50000, FeePercentage: 1.5, ProcessingTime: ProcessingTimeInstant},
			{ID: 2, Code: "WASA", Name: "WASA", Category: "water", MinAmount: 50, MaxAmount: 25000, FeePercentage: 1.0, ProcessingTime: "1-2 hours"},
			{ID: 3, Code: "TITAS", Name: "TITAS", Category: "gas", MinAmount: 50, MaxAmount: 20000, FeePercentage: 1.2, ProcessingTime: ProcessingTimeInstant},
			{ID: 4, Code: "BTCL", Name: "BTCL", Category: "internet", MinAmount: 100, MaxAmount: 10000, FeePercentage: 2.0, ProcessingTime: ProcessingTimeInstant},
		},
	}
}
