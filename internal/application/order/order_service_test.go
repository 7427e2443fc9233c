package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/backoffice/backend/internal/domain/order"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
)

// MockSupplierOrderRepository is a mock implementation of SupplierOrderRepository
type MockSupplierOrderRepository struct {
	mock.Mock
}

func (m *MockSupplierOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.SupplierOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.SupplierOrder), args.Error(1)
}

func (m *MockSupplierOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.SupplierOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.SupplierOrder), args.Error(1)
}

func (m *MockSupplierOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.SupplierOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.SupplierOrder), args.Error(1)
}

func (m *MockSupplierOrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) ([]order.SupplierOrder, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.SupplierOrder), args.Error(1)
}

func (m *MockSupplierOrderRepository) Save(ctx context.Context, o *order.SupplierOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockSupplierOrderRepository) SaveWithLock(ctx context.Context, o *order.SupplierOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockSupplierOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	args := m.Called(ctx, orderNumber)
	return args.Bool(0), args.Error(1)
}

// Test helpers
var (
	testOrderID     = uuid.New()
	testOrderNumber = "ORD-20260110-0930"
	testSupplier    = "Acme Supplies"
)

func createTestOrder() *order.SupplierOrder {
	o, _ := order.NewSupplierOrder(testOrderNumber, testSupplier, time.Now())
	o.ClearDomainEvents()
	return o
}

func createTestOrderWithProduct() *order.SupplierOrder {
	o := createTestOrder()
	o.AddProduct("SKU-A", "Widget", decimal.NewFromInt(10), valueobject.NewMoneyEURFromFloat(5))
	return o
}

func createInTransitOrder() *order.SupplierOrder {
	o := createTestOrderWithProduct()
	o.Confirm()
	o.MarkInTransit()
	o.ClearDomainEvents()
	return o
}

func assertDomainErrCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestSupplierOrderService_Create(t *testing.T) {
	t.Run("create order with generated number", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		repo.On("ExistsByOrderNumber", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*order.SupplierOrder")).Return(nil)

		req := CreateSupplierOrderRequest{
			Supplier: testSupplier,
			Products: []CreateOrderProductInput{
				{SKU: "SKU-A", Name: "Widget", Quantity: decimal.NewFromInt(10), Price: "5.00"},
			},
		}

		result, err := service.Create(ctx, req)

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, strings.HasPrefix(result.OrderNumber, "ORD-"))
		assert.Equal(t, testSupplier, result.Supplier)
		assert.Equal(t, "DRAFT", result.Status)
		require.Len(t, result.Products, 1)
		assert.True(t, result.TotalValue.Equal(decimal.NewFromInt(50)))
		repo.AssertExpectations(t)
	})

	t.Run("create order with comma decimal price", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		repo.On("ExistsByOrderNumber", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*order.SupplierOrder")).Return(nil)

		req := CreateSupplierOrderRequest{
			Supplier: testSupplier,
			Products: []CreateOrderProductInput{
				{SKU: "SKU-A", Name: "Widget", Quantity: decimal.NewFromInt(4), Price: "2,50"},
			},
		}

		result, err := service.Create(ctx, req)

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.TotalValue.Equal(decimal.NewFromInt(10)))
	})

	t.Run("rejects malformed price", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		repo.On("ExistsByOrderNumber", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

		req := CreateSupplierOrderRequest{
			Supplier: testSupplier,
			Products: []CreateOrderProductInput{
				{SKU: "SKU-A", Name: "Widget", Quantity: decimal.NewFromInt(4), Price: "1.234,56"},
			},
		}

		_, err := service.Create(ctx, req)
		assertDomainErrCode(t, err, "VALIDATION_ERROR")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects explicit duplicate order number", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		repo.On("ExistsByOrderNumber", mock.Anything, testOrderNumber).Return(true, nil)

		req := CreateSupplierOrderRequest{
			Supplier:    testSupplier,
			OrderNumber: testOrderNumber,
		}

		_, err := service.Create(ctx, req)
		assertDomainErrCode(t, err, "ALREADY_EXISTS")
	})

	t.Run("resolves generated number collision with suffix", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		purchaseDate := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
		base := order.GenerateOrderNumber(purchaseDate)
		repo.On("ExistsByOrderNumber", mock.Anything, base).Return(true, nil)
		repo.On("ExistsByOrderNumber", mock.Anything, base+"-2").Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*order.SupplierOrder")).Return(nil)

		req := CreateSupplierOrderRequest{
			Supplier:     testSupplier,
			PurchaseDate: &purchaseDate,
		}

		result, err := service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, base+"-2", result.OrderNumber)
		repo.AssertExpectations(t)
	})
}

func TestSupplierOrderService_Confirm(t *testing.T) {
	t.Run("confirm draft order", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		o := createTestOrderWithProduct()
		repo.On("FindByID", mock.Anything, testOrderID).Return(o, nil)
		repo.On("SaveWithLock", mock.Anything, o).Return(nil)

		result, err := service.Confirm(ctx, testOrderID)

		assert.NoError(t, err)
		assert.Equal(t, "CONFIRMED", result.Status)
		repo.AssertExpectations(t)
	})

	t.Run("confirm without lines fails", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		repo.On("FindByID", mock.Anything, testOrderID).Return(createTestOrder(), nil)

		_, err := service.Confirm(ctx, testOrderID)
		assertDomainErrCode(t, err, "VALIDATION_ERROR")
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("order not found", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		repo.On("FindByID", mock.Anything, testOrderID).Return(nil, shared.ErrNotFound)

		_, err := service.Confirm(ctx, testOrderID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestSupplierOrderService_MarkInTransit(t *testing.T) {
	t.Run("mark confirmed order in transit with tracking", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		o := createTestOrderWithProduct()
		o.Confirm()
		repo.On("FindByID", mock.Anything, testOrderID).Return(o, nil)
		repo.On("SaveWithLock", mock.Anything, o).Return(nil)

		result, err := service.MarkInTransit(ctx, testOrderID, &SetTrackingRequest{Carrier: "DHL", Number: "JD014600003"})

		assert.NoError(t, err)
		assert.Equal(t, "IN_TRANSIT", result.Status)
		assert.Equal(t, "DHL", result.TrackingCarrier)
		assert.Equal(t, "JD014600003", result.TrackingNumber)
		repo.AssertExpectations(t)
	})

	t.Run("draft order cannot ship", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		repo.On("FindByID", mock.Anything, testOrderID).Return(createTestOrderWithProduct(), nil)

		_, err := service.MarkInTransit(ctx, testOrderID, nil)
		assertDomainErrCode(t, err, "INVALID_STATE")
	})
}

func TestSupplierOrderService_Receive(t *testing.T) {
	t.Run("partial receipt", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		o := createInTransitOrder()
		repo.On("FindByID", mock.Anything, testOrderID).Return(o, nil)
		repo.On("SaveWithLock", mock.Anything, o).Return(nil)

		req := ReceiveGoodsRequest{
			Items: []ReceiveItemInput{{SKU: "SKU-A", Quantity: decimal.NewFromInt(4)}},
		}
		result, err := service.Receive(ctx, testOrderID, req)

		assert.NoError(t, err)
		assert.Equal(t, "PARTIAL", result.Status)
		assert.True(t, result.TotalSpent.Equal(decimal.NewFromInt(20)))
		assert.True(t, result.ReceiveProgress.Percentage.Equal(decimal.NewFromInt(40)))
		repo.AssertExpectations(t)
	})

	t.Run("receipt completing the order", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		o := createInTransitOrder()
		repo.On("FindByID", mock.Anything, testOrderID).Return(o, nil)
		repo.On("SaveWithLock", mock.Anything, o).Return(nil)

		req := ReceiveGoodsRequest{
			Items: []ReceiveItemInput{{SKU: "SKU-A", Quantity: decimal.NewFromInt(10)}},
		}
		result, err := service.Receive(ctx, testOrderID, req)

		assert.NoError(t, err)
		assert.Equal(t, "RECEIVED", result.Status)
	})

	t.Run("over receipt is rejected", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		repo.On("FindByID", mock.Anything, testOrderID).Return(createInTransitOrder(), nil)

		req := ReceiveGoodsRequest{
			Items: []ReceiveItemInput{{SKU: "SKU-A", Quantity: decimal.NewFromInt(11)}},
		}
		_, err := service.Receive(ctx, testOrderID, req)
		assertDomainErrCode(t, err, "QUANTITY_EXCEEDED")
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("unknown SKU is rejected", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		repo.On("FindByID", mock.Anything, testOrderID).Return(createInTransitOrder(), nil)

		req := ReceiveGoodsRequest{
			Items: []ReceiveItemInput{{SKU: "SKU-X", Quantity: decimal.NewFromInt(1)}},
		}
		_, err := service.Receive(ctx, testOrderID, req)
		assertDomainErrCode(t, err, "PRODUCT_NOT_IN_ORDER")
	})
}

func TestSupplierOrderService_Close(t *testing.T) {
	t.Run("park order as partial delivery", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		o := createInTransitOrder()
		o.Receive("SKU-A", decimal.NewFromInt(4))
		repo.On("FindByID", mock.Anything, testOrderID).Return(o, nil)
		repo.On("SaveWithLock", mock.Anything, o).Return(nil)

		result, err := service.Close(ctx, testOrderID, CloseSupplierOrderRequest{Reason: "supplier out of stock"})

		assert.NoError(t, err)
		assert.Equal(t, "PARTIAL", result.Status)
		assert.Equal(t, "supplier out of stock", result.CloseReason)
		require.NotNil(t, result.PaymentDate)
	})

	t.Run("final close ends the delivery window", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		o := createInTransitOrder()
		o.Receive("SKU-A", decimal.NewFromInt(4))
		o.ClosePartial("supplier out of stock", false)
		repo.On("FindByID", mock.Anything, testOrderID).Return(o, nil)
		repo.On("SaveWithLock", mock.Anything, o).Return(nil)

		result, err := service.Close(ctx, testOrderID, CloseSupplierOrderRequest{Reason: "remainder cancelled", Final: true})

		assert.NoError(t, err)
		assert.Equal(t, "RECEIVED", result.Status)
	})
}

func TestSupplierOrderService_MarkPaid(t *testing.T) {
	t.Run("settle received order", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		o := createInTransitOrder()
		o.Receive("SKU-A", decimal.NewFromInt(10))
		repo.On("FindByID", mock.Anything, testOrderID).Return(o, nil)
		repo.On("SaveWithLock", mock.Anything, o).Return(nil)

		result, err := service.MarkPaid(ctx, testOrderID, MarkPaidRequest{})

		assert.NoError(t, err)
		assert.Equal(t, "PAID", result.Status)
		require.NotNil(t, result.PaidAt)
		assert.True(t, result.PayProgress.Percentage.Equal(decimal.NewFromInt(100)))
	})

	t.Run("draft order cannot be settled", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		repo.On("FindByID", mock.Anything, testOrderID).Return(createTestOrderWithProduct(), nil)

		_, err := service.MarkPaid(ctx, testOrderID, MarkPaidRequest{})
		assertDomainErrCode(t, err, "INVALID_STATE")
	})
}

func TestSupplierOrderService_Delete(t *testing.T) {
	t.Run("delete draft order", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		o := createTestOrderWithProduct()
		repo.On("FindByID", mock.Anything, testOrderID).Return(o, nil)
		repo.On("Delete", mock.Anything, o.GetID()).Return(nil)

		err := service.Delete(ctx, testOrderID)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("received order cannot be deleted", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		o := createInTransitOrder()
		o.Receive("SKU-A", decimal.NewFromInt(10))
		repo.On("FindByID", mock.Anything, testOrderID).Return(o, nil)

		err := service.Delete(ctx, testOrderID)
		assertDomainErrCode(t, err, "INVALID_STATE")
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deleting twice reports not found", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		repo.On("FindByID", mock.Anything, testOrderID).Return(nil, shared.ErrNotFound)

		err := service.Delete(ctx, testOrderID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestSupplierOrderService_List(t *testing.T) {
	t.Run("list with status filter", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		orders := []order.SupplierOrder{*createTestOrderWithProduct()}
		repo.On("FindByStatus", mock.Anything, order.StatusDraft, mock.AnythingOfType("shared.Filter")).Return(orders, nil)
		repo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

		status := order.StatusDraft
		result, total, err := service.List(ctx, SupplierOrderListFilter{Status: &status})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, result, 1)
		assert.Equal(t, testOrderNumber, result[0].OrderNumber)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		repo := new(MockSupplierOrderRepository)
		service := NewSupplierOrderService(repo)
		ctx := context.Background()

		status := order.Status("SHIPPED")
		_, _, err := service.List(ctx, SupplierOrderListFilter{Status: &status})
		assertDomainErrCode(t, err, "VALIDATION_ERROR")
	})
}
