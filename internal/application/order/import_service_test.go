package order

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/backoffice/backend/internal/domain/order"
)

func newImportService(repo *MockSupplierOrderRepository) *OrderImportService {
	return NewOrderImportService(NewSupplierOrderService(repo))
}

func TestOrderImportService_Import(t *testing.T) {
	t.Run("groups rows by order number", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := newImportService(repo)

		var saved []*order.SupplierOrder
		repo.On("ExistsByOrderNumber", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*order.SupplierOrder")).
			Run(func(args mock.Arguments) {
				saved = append(saved, args.Get(1).(*order.SupplierOrder))
			}).Return(nil)

		csv := strings.Join([]string{
			"order_number,supplier,purchase_date,sku,name,quantity,price",
			"ORD-A,Acme Supplies,2026-01-10,SKU-A,Widget,10,5.00",
			"ORD-A,Acme Supplies,2026-01-10,SKU-B,Gadget,4,\"2,50\"",
			",Globex,2026-01-11,SKU-C,Sprocket,2,1.25",
		}, "\n")

		result, err := service.Import(context.Background(), strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, 3, result.TotalRows)
		assert.Equal(t, 2, result.ImportedOrders)
		assert.Equal(t, 3, result.ImportedRows)
		assert.Zero(t, result.ErrorRows)
		assert.Empty(t, result.Errors)

		require.Len(t, saved, 2)
		first := saved[0]
		assert.Equal(t, "ORD-A", first.OrderNumber)
		require.Len(t, first.Products, 2)
		assert.True(t, first.TotalValue.Equal(decimal.NewFromInt(60)))

		second := saved[1]
		assert.Equal(t, "Globex", second.Supplier)
		assert.True(t, strings.HasPrefix(second.OrderNumber, "ORD-20260111-"))
	})

	t.Run("a bad row poisons only its group", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := newImportService(repo)

		repo.On("ExistsByOrderNumber", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*order.SupplierOrder")).Return(nil)

		csv := strings.Join([]string{
			"order_number,supplier,purchase_date,sku,name,quantity,price",
			"ORD-A,Acme Supplies,2026-01-10,SKU-A,Widget,ten,5.00",
			"ORD-A,Acme Supplies,2026-01-10,SKU-B,Gadget,4,2.50",
			"ORD-B,Globex,2026-01-11,SKU-C,Sprocket,2,1.25",
		}, "\n")

		result, err := service.Import(context.Background(), strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, 1, result.ImportedOrders)
		assert.Equal(t, []string{"ORD-B"}, result.OrderNumbers)
		assert.Equal(t, 1, result.ErrorRows)
		require.NotEmpty(t, result.Errors)
		assert.Equal(t, "quantity", result.Errors[0].Column)
		repo.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("zero quantity is a row-level error", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := newImportService(repo)

		repo.On("ExistsByOrderNumber", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*order.SupplierOrder")).Return(nil)

		csv := strings.Join([]string{
			"order_number,supplier,purchase_date,sku,name,quantity,price",
			"ORD-A,Acme Supplies,2026-01-10,SKU-A,Widget,0,5.00",
			"ORD-A,Acme Supplies,2026-01-10,SKU-B,Gadget,-2,2.50",
			"ORD-B,Globex,2026-01-11,SKU-C,Sprocket,2,1.25",
		}, "\n")

		result, err := service.Import(context.Background(), strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, 1, result.ImportedOrders)
		assert.Equal(t, []string{"ORD-B"}, result.OrderNumbers)
		assert.Equal(t, 2, result.ErrorRows)
		require.Len(t, result.Errors, 2)
		assert.Equal(t, 2, result.Errors[0].Row)
		assert.Equal(t, "quantity", result.Errors[0].Column)
		assert.Equal(t, 3, result.Errors[1].Row)
		assert.Equal(t, "quantity", result.Errors[1].Column)
		repo.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("missing required column fails the file", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := newImportService(repo)

		csv := "supplier,sku,name,quantity\nAcme,SKU-A,Widget,10\n"
		_, err := service.Import(context.Background(), strings.NewReader(csv))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "price")
	})

	t.Run("duplicate order number in store is reported per group", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := newImportService(repo)

		repo.On("ExistsByOrderNumber", mock.Anything, "ORD-A").Return(true, nil)

		csv := strings.Join([]string{
			"order_number,supplier,purchase_date,sku,name,quantity,price",
			"ORD-A,Acme Supplies,2026-01-10,SKU-A,Widget,10,5.00",
		}, "\n")

		result, err := service.Import(context.Background(), strings.NewReader(csv))
		require.NoError(t, err)

		assert.Zero(t, result.ImportedOrders)
		assert.Equal(t, 1, result.ErrorRows)
		require.NotEmpty(t, result.Errors)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("empty file is rejected", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := newImportService(repo)

		csv := "order_number,supplier,purchase_date,sku,name,quantity,price\n"
		_, err := service.Import(context.Background(), strings.NewReader(csv))
		require.Error(t, err)
	})
}
