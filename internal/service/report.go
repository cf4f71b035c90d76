package service

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/repository"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	topItemsLimit   = 10
	dailySalesLimit = 30
	recentOrders    = 5
)

type ReportService interface {
	Sales(ctx context.Context, from, to *time.Time) (*dto.SalesReport, error)
	Dashboard(ctx context.Context, now time.Time) (*dto.Dashboard, error)
}

type reportServiceImpl struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
}

func NewReportService(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
) ReportService {
	return &reportServiceImpl{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
	}
}

// Sales summarises orders whose payment completed, bucketed by creation date.
func (s *reportServiceImpl) Sales(ctx context.Context, from, to *time.Time) (*dto.SalesReport, error) {
	orders, err := s.orderRepo.ListCompletedPayments(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list paid orders: %w", err)
	}

	report := &dto.SalesReport{
		TotalSales:        decimal.Zero,
		AverageOrderValue: decimal.Zero,
		PaymentBreakdown:  make(map[model.PaymentMethod]decimal.Decimal, len(model.PaymentMethods)),
		TopItems:          []dto.TopItem{},
		DailySales:        []dto.DailySales{},
	}
	for _, method := range model.PaymentMethods {
		report.PaymentBreakdown[method] = decimal.Zero
	}

	items := make(map[string]*dto.TopItem)
	days := make(map[string]*dto.DailySales)
	for _, order := range orders {
		report.TotalSales = report.TotalSales.Add(order.Total)
		report.TotalOrders++

		if order.PaymentMethod != nil && order.PaymentMethod.Valid() {
			method := *order.PaymentMethod
			report.PaymentBreakdown[method] = report.PaymentBreakdown[method].Add(order.Total)
		}

		for _, line := range order.Items {
			item, ok := items[line.ItemName]
			if !ok {
				item = &dto.TopItem{Name: line.ItemName, Revenue: decimal.Zero}
				items[line.ItemName] = item
			}
			item.Quantity += int64(line.Quantity)
			item.Revenue = item.Revenue.Add(line.TotalPrice)
		}

		date := order.Timestamps.CreatedAt.UTC().Format("2006-01-02")
		day, ok := days[date]
		if !ok {
			day = &dto.DailySales{Date: date, Sales: decimal.Zero}
			days[date] = day
		}
		day.Sales = day.Sales.Add(order.Total)
		day.Orders++
	}

	if report.TotalOrders > 0 {
		report.AverageOrderValue = report.TotalSales.Div(decimal.NewFromInt(report.TotalOrders)).Round(2)
	}

	for _, item := range items {
		report.TopItems = append(report.TopItems, *item)
	}
	sort.Slice(report.TopItems, func(i, j int) bool {
		if report.TopItems[i].Revenue.Equal(report.TopItems[j].Revenue) {
			return report.TopItems[i].Name < report.TopItems[j].Name
		}
		return report.TopItems[i].Revenue.GreaterThan(report.TopItems[j].Revenue)
	})
	if len(report.TopItems) > topItemsLimit {
		report.TopItems = report.TopItems[:topItemsLimit]
	}

	for _, day := range days {
		report.DailySales = append(report.DailySales, *day)
	}
	sort.Slice(report.DailySales, func(i, j int) bool {
		return report.DailySales[i].Date < report.DailySales[j].Date
	})
	if len(report.DailySales) > dailySalesLimit {
		report.DailySales = report.DailySales[len(report.DailySales)-dailySalesLimit:]
	}

	return report, nil
}

func (s *reportServiceImpl) Dashboard(ctx context.Context, now time.Time) (*dto.Dashboard, error) {
	now = now.UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	today, err := s.orderRepo.List(ctx, dto.OrderFilter{DateFrom: &startOfDay, Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("list today's orders: %w", err)
	}

	dashboard := &dto.Dashboard{
		TodayRevenue: decimal.Zero,
		TodayOrders:  int64(len(today)),
	}
	for _, order := range today {
		if order.PaymentStatus == model.PaymentCompleted {
			dashboard.TodayRevenue = dashboard.TodayRevenue.Add(order.Total)
		}
	}

	if dashboard.CleaningOrders, err = s.orderRepo.CountByStatus(ctx, model.OrderCleaning); err != nil {
		return nil, fmt.Errorf("count cleaning orders: %w", err)
	}
	if dashboard.ReadyOrders, err = s.orderRepo.CountByStatus(ctx, model.OrderReady); err != nil {
		return nil, fmt.Errorf("count ready orders: %w", err)
	}
	if dashboard.DeliveryOrders, err = s.orderRepo.CountActiveDeliveries(ctx); err != nil {
		return nil, fmt.Errorf("count deliveries: %w", err)
	}
	if dashboard.TotalCustomers, err = s.customerRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	if dashboard.RecentOrders, err = s.orderRepo.List(ctx, dto.OrderFilter{Limit: recentOrders}); err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}

	return dashboard, nil
}
