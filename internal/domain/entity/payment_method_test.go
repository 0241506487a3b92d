package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentMethod_Apply(t *testing.T) {
	tests := []struct {
		name   string
		method PaymentMethod
		amount string
		want   string
	}{
		{name: "cash", method: PaymentMethod{}, amount: "111.00", want: "111.00"},
		{name: "credit card surcharge", method: PaymentMethod{SurchargePercent: dec("3.5")}, amount: "100.00", want: "103.50"},
		{name: "pix discount", method: PaymentMethod{DiscountPercent: dec("5")}, amount: "111.00", want: "105.45"},
		{name: "fixed fee", method: PaymentMethod{SurchargeFixed: dec("2.00")}, amount: "50.00", want: "52.00"},
		{name: "never negative", method: PaymentMethod{DiscountPercent: dec("100"), SurchargeFixed: dec("-5")}, amount: "10.00", want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.method.Apply(dec(tt.amount))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}
