package billing

import "praxis/models"

// QuoteSeats prices a seat upgrade. Pricing is flat and non-prorated: the
// extra payment this month is exactly the new seats at full price, and the
// recurring amount is the full seat count at full price.
func QuoteSeats(currentSeats, additionalSeats int, unitPrice int64) models.SeatUpgradeQuote {
	return models.SeatUpgradeQuote{
		AdditionalSeats:       additionalSeats,
		UnitPrice:             unitPrice,
		SeatsTotalAfter:       currentSeats + additionalSeats,
		ExtraPaymentThisMonth: int64(additionalSeats) * unitPrice,
		MonthlyRecurring:      int64(currentSeats+additionalSeats) * unitPrice,
	}
}
