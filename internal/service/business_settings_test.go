package service

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessSettingsDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	settings, err := env.business.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "DryClean POS", settings.BusinessName)
	assert.Equal(t, "US", settings.Country.CountryCode)
	assert.Equal(t, "USD", settings.Country.CurrencyCode)
	assert.Equal(t, "VAT", settings.Tax.TaxName)
	assert.True(t, settings.Tax.TaxRate.IsZero())
	assert.True(t, settings.AutoPrintReceipt)

	euro := NewBusinessSettingsService(env.settingsRepo, "eur")
	settings, err = euro.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EUR", settings.Country.CurrencyCode)
}

func TestUpdateBusinessSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phone := "555-0000"

	saved, err := env.business.Update(ctx, "admin-1", &dto.BusinessSettingsRequest{
		BusinessName:     " Fresh Press ",
		Phone:            &phone,
		AutoPrintReceipt: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fresh Press", saved.BusinessName)
	assert.Equal(t, "USD", saved.Country.CurrencyCode, "country kept when omitted")
	assert.False(t, saved.AutoPrintLabels)

	_, err = env.business.Update(ctx, "admin-1", &dto.BusinessSettingsRequest{BusinessName: "  "})
	requireKind(t, err, KindValidation)

	country, err := env.business.UpdateCountry(ctx, "manager-1", &model.CountrySettings{
		CountryCode:    "gb",
		CountryName:    "United Kingdom",
		CurrencyCode:   "gbp",
		CurrencySymbol: "£",
	})
	require.NoError(t, err)
	assert.Equal(t, "GB", country.Country.CountryCode)
	assert.Equal(t, "GBP", country.Country.CurrencyCode)
	assert.Equal(t, "MM/DD/YYYY", country.Country.DateFormat)
	assert.Equal(t, "Fresh Press", country.BusinessName, "other sections untouched")

	_, err = env.business.UpdateCountry(ctx, "manager-1", &model.CountrySettings{CountryCode: "GB", CurrencyCode: "POUND"})
	requireKind(t, err, KindValidation)

	tax, err := env.business.UpdateTax(ctx, "manager-1", &model.TaxSettings{
		TaxName:     "VAT",
		TaxRate:     money("20"),
		IsInclusive: true,
		AdditionalTaxes: []model.AdditionalTax{
			{Name: "Eco levy", Rate: money("1.5")},
		},
	})
	require.NoError(t, err)
	requireMoney(t, "20", tax.Tax.TaxRate)

	tests := []struct {
		name string
		tax  *model.TaxSettings
	}{
		{"missing name", &model.TaxSettings{TaxRate: money("5")}},
		{"rate above 100", &model.TaxSettings{TaxName: "VAT", TaxRate: money("120")}},
		{"negative rate", &model.TaxSettings{TaxName: "VAT", TaxRate: money("-1")}},
		{"bad additional tax", &model.TaxSettings{TaxName: "VAT", AdditionalTaxes: []model.AdditionalTax{{Name: "", Rate: money("1")}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.business.UpdateTax(ctx, "manager-1", tt.tax)
			requireKind(t, err, KindValidation)
		})
	}

	stored, err := env.business.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Fresh Press", stored.BusinessName)
	assert.Equal(t, "GBP", stored.Country.CurrencyCode)
	assert.True(t, stored.Tax.IsInclusive)
	require.Len(t, stored.Tax.AdditionalTaxes, 1)
	requireMoney(t, "1.5", stored.Tax.AdditionalTaxes[0].Rate)
	require.NotNil(t, stored.UpdatedBy)
	assert.Equal(t, "manager-1", *stored.UpdatedBy)
}
