package core

// RoomTotal computes the amount billed to a room for one period.
//
// With no reading for the period the projection is base rent plus the flat
// fees, with no usage component. With a reading, clamped electricity and
// water usage are charged at the global rates and the reading's extra fees
// are added on top. The global rates override any per-room rate fields.
func RoomTotal(room Room, reading *Reading, rates GlobalRates) Money {
	total := room.BaseRent.
		Add(rates.ServiceFee).
		Add(rates.OtherFee)
	if reading == nil {
		return total
	}
	return total.
		Add(rates.ElectricityRate.MulUnits(reading.ElectricityUsage())).
		Add(rates.WaterRate.MulUnits(reading.WaterUsage())).
		Add(reading.OtherFees)
}
