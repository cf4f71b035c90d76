package service

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/repository"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BusinessSettingsService interface {
	Get(ctx context.Context) (*model.BusinessSettings, error)
	Update(ctx context.Context, actorID string, req *dto.BusinessSettingsRequest) (*model.BusinessSettings, error)
	UpdateCountry(ctx context.Context, actorID string, country *model.CountrySettings) (*model.BusinessSettings, error)
	UpdateTax(ctx context.Context, actorID string, tax *model.TaxSettings) (*model.BusinessSettings, error)
}

type businessSettingsServiceImpl struct {
	settingsRepo    repository.SettingsRepository
	defaultCurrency string
}

// NewBusinessSettingsService serves the shop profile. defaultCurrency is the
// currency used until an admin saves country settings.
func NewBusinessSettingsService(settingsRepo repository.SettingsRepository, defaultCurrency string) BusinessSettingsService {
	return &businessSettingsServiceImpl{
		settingsRepo:    settingsRepo,
		defaultCurrency: defaultCurrency,
	}
}

func DefaultCountrySettings() model.CountrySettings {
	return model.CountrySettings{
		CountryCode:    "US",
		CountryName:    "United States",
		CurrencyCode:   "USD",
		CurrencySymbol: "$",
		DateFormat:     "MM/DD/YYYY",
	}
}

func DefaultTaxSettings() model.TaxSettings {
	return model.TaxSettings{
		TaxName: "VAT",
		TaxRate: decimal.Zero,
	}
}

func DefaultBusinessSettings() *model.BusinessSettings {
	return &model.BusinessSettings{
		ID:                  model.BusinessSettingsID,
		BusinessName:        "DryClean POS",
		Country:             DefaultCountrySettings(),
		Tax:                 DefaultTaxSettings(),
		AutoPrintReceipt:    true,
		AutoPrintLabels:     true,
		OpenDrawerOnPayment: true,
	}
}

func (s *businessSettingsServiceImpl) Get(ctx context.Context) (*model.BusinessSettings, error) {
	settings, err := s.settingsRepo.GetBusiness(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = DefaultBusinessSettings()
		if s.defaultCurrency != "" {
			settings.Country.CurrencyCode = strings.ToUpper(s.defaultCurrency)
		}
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get business settings: %w", err)
	}

	return settings, nil
}

func (s *businessSettingsServiceImpl) Update(ctx context.Context, actorID string, req *dto.BusinessSettingsRequest) (*model.BusinessSettings, error) {
	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		return nil, newError(KindValidation, "business_name is required")
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings := &model.BusinessSettings{
		BusinessName:        name,
		Address:             req.Address,
		Phone:               req.Phone,
		Email:               req.Email,
		Country:             current.Country,
		Tax:                 current.Tax,
		AutoPrintReceipt:    req.AutoPrintReceipt,
		AutoPrintLabels:     req.AutoPrintLabels,
		OpenDrawerOnPayment: req.OpenDrawerOnPayment,
	}
	if req.Country != nil {
		country, err := normalizeCountry(req.Country)
		if err != nil {
			return nil, err
		}
		settings.Country = country
	}
	if req.Tax != nil {
		if err := validateTax(req.Tax); err != nil {
			return nil, err
		}
		settings.Tax = *req.Tax
	}

	return s.save(ctx, actorID, settings)
}

func (s *businessSettingsServiceImpl) UpdateCountry(ctx context.Context, actorID string, country *model.CountrySettings) (*model.BusinessSettings, error) {
	normalized, err := normalizeCountry(country)
	if err != nil {
		return nil, err
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	settings.Country = normalized

	return s.save(ctx, actorID, settings)
}

func (s *businessSettingsServiceImpl) UpdateTax(ctx context.Context, actorID string, tax *model.TaxSettings) (*model.BusinessSettings, error) {
	if err := validateTax(tax); err != nil {
		return nil, err
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	settings.Tax = *tax

	return s.save(ctx, actorID, settings)
}

func (s *businessSettingsServiceImpl) save(ctx context.Context, actorID string, settings *model.BusinessSettings) (*model.BusinessSettings, error) {
	settings.UpdatedBy = &actorID
	settings.UpdatedAt = time.Now().UTC()

	if err := s.settingsRepo.SaveBusiness(ctx, settings); err != nil {
		return nil, fmt.Errorf("save business settings: %w", err)
	}

	return settings, nil
}

func normalizeCountry(country *model.CountrySettings) (model.CountrySettings, error) {
	normalized := *country
	normalized.CountryCode = strings.ToUpper(strings.TrimSpace(country.CountryCode))
	normalized.CurrencyCode = strings.ToUpper(strings.TrimSpace(country.CurrencyCode))

	if normalized.CountryCode == "" {
		return normalized, newError(KindValidation, "country_code is required")
	}
	if len(normalized.CurrencyCode) != 3 {
		return normalized, newError(KindValidation, "currency_code must be a 3-letter ISO code")
	}
	if normalized.DateFormat == "" {
		normalized.DateFormat = DefaultCountrySettings().DateFormat
	}

	return normalized, nil
}

func validateTax(tax *model.TaxSettings) error {
	if strings.TrimSpace(tax.TaxName) == "" {
		return newError(KindValidation, "tax_name is required")
	}
	if tax.TaxRate.IsNegative() || tax.TaxRate.GreaterThan(hundred) {
		return newError(KindValidation, "tax_rate must be between 0 and 100")
	}
	for _, extra := range tax.AdditionalTaxes {
		if extra.Name == "" {
			return newError(KindValidation, "additional tax name is required")
		}
		if extra.Rate.IsNegative() || extra.Rate.GreaterThan(hundred) {
			return newError(KindValidation, "additional tax %s: rate must be between 0 and 100", extra.Name)
		}
	}

	return nil
}
