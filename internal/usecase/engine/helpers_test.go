package engine

import (
	"time"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func fptr(v float64) *float64 { return &v }

// demoPurchase mirrors the demo seed property: settled 2024-11-01 at 555k
// with an 432.9k loan and 33,875 of acquisition costs.
func demoPurchase() *domain.PurchaseEvent {
	return &domain.PurchaseEvent{
		SettlementDate: date(2024, time.November, 1),
		PurchasePrice:  555000,
		Deposit:        fptr(122100),
		StampDuty:      fptr(18000),
		LegalFees:      fptr(2000),
		BuyersAgentFee: fptr(13875),
		LoanAmount:     fptr(432900),
	}
}

// demoLoan is the matching interest-only loan at 5.74% with monthly
// repayments and no manual balance.
func demoLoan() domain.LoanEvent {
	return domain.LoanEvent{
		EffectiveDate:    date(2024, time.November, 1),
		LoanType:         domain.LoanTypeInterestOnly,
		RateType:         domain.RateTypeVariable,
		AnnualRate:       0.0574,
		RepaymentAmount:  2069.51,
		RepaymentCadence: domain.CadenceMonthly,
		OffsetBalance:    fptr(150000),
	}
}

// demoTenancy starts 2024-11-15 at $424/week.
func demoTenancy() domain.TenancyEvent {
	return domain.TenancyEvent{
		Type:          domain.TenancyStart,
		EffectiveDate: date(2024, time.November, 15),
		WeeklyRent:    fptr(424),
	}
}

func demoEvents() domain.EventSet {
	return domain.EventSet{
		Purchase:  demoPurchase(),
		Loans:     []domain.LoanEvent{demoLoan()},
		Tenancies: []domain.TenancyEvent{demoTenancy()},
		RecurringCosts: []domain.RecurringCostEvent{
			{
				EffectiveDate: date(2024, time.November, 15),
				Category:      "MGMT_FEE",
				FeeType:       domain.FeeTypePercentOfRent,
				Amount:        0.08,
				Cadence:       domain.CadenceMonthly,
			},
			{
				EffectiveDate: date(2024, time.November, 1),
				Category:      "INSURANCE",
				FeeType:       domain.FeeTypeFixed,
				Amount:        2042,
				Cadence:       domain.CadenceAnnually,
			},
		},
	}
}
