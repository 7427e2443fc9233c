package order

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	csvimport "github.com/backoffice/backend/internal/infrastructure/import"
)

// importDateFormat is the purchase date layout accepted in CSV files
const importDateFormat = "2006-01-02"

// maxImportRows caps the number of order lines accepted in one file
const maxImportRows = 10000

// orderImportHeaders are the columns every import file must carry
var orderImportHeaders = []string{"supplier", "sku", "name", "quantity", "price"}

// OrderImportResult represents the result of a CSV order import
type OrderImportResult struct {
	TotalRows      int                  `json:"total_rows"`
	ImportedOrders int                  `json:"imported_orders"`
	ImportedRows   int                  `json:"imported_rows"`
	ErrorRows      int                  `json:"error_rows"`
	OrderNumbers   []string             `json:"order_numbers,omitempty"`
	Errors         []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated    bool                 `json:"is_truncated,omitempty"`
	TotalErrors    int                  `json:"total_errors,omitempty"`
}

// OrderImportService creates supplier orders in bulk from CSV files.
// Each file row is one ordered line; rows sharing an order_number (or,
// when the column is empty, the same supplier and purchase date) fold
// into one order.
type OrderImportService struct {
	orders    *SupplierOrderService
	maxErrors int
}

// NewOrderImportService creates a new OrderImportService
func NewOrderImportService(orders *SupplierOrderService) *OrderImportService {
	return &OrderImportService{
		orders:    orders,
		maxErrors: 100,
	}
}

// GetValidationRules returns the validation rules for order import rows
func (s *OrderImportService) GetValidationRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field("order_number").String().MaxLength(50).Build(),
		csvimport.Field("supplier").Required().String().MinLength(1).MaxLength(200).Build(),
		csvimport.Field("purchase_date").Date().DateFormat(importDateFormat).Build(),
		csvimport.Field("sku").Required().String().MinLength(1).MaxLength(64).Build(),
		csvimport.Field("name").Required().String().MinLength(1).MaxLength(200).Build(),
		csvimport.Field("quantity").Required().Decimal().Custom(validatePositiveQuantity).Build(),
		csvimport.Field("price").Required().String().Custom(validateLocalizedPrice).Build(),
	}
}

// validatePositiveQuantity rejects zero and negative quantities at the row
// level, before the order group is assembled
func validatePositiveQuantity(value string) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return err
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("quantity must be positive")
	}
	return nil
}

// validateLocalizedPrice accepts decimal strings with either "." or "," as
// the decimal separator
func validateLocalizedPrice(value string) error {
	d, err := valueobject.ParseLocalizedDecimal(value)
	if err != nil {
		return err
	}
	if d.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	return nil
}

// orderGroup collects the rows of one future order in file order
type orderGroup struct {
	orderNumber  string
	supplier     string
	purchaseDate *time.Time
	firstLine    int
	products     []CreateOrderProductInput
}

// Import parses, validates and imports a CSV file of order lines. Row
// errors are collected per row; a group with any bad row is not created.
func (s *OrderImportService) Import(ctx context.Context, reader io.Reader) (*OrderImportResult, error) {
	parser, err := csvimport.NewCSVParser(reader, csvimport.WithMaxRows(maxImportRows))
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.ValidateHeaders(orderImportHeaders); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", csvimport.ErrMissingHeader, strings.Join(missing, ", "))
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, csvimport.ErrNoDataRows
	}

	result := &OrderImportResult{TotalRows: len(rows)}
	errs := csvimport.NewErrorCollection(s.maxErrors)
	validator := csvimport.NewFieldValidator(s.GetValidationRules(), s.maxErrors)

	groups := make(map[string]*orderGroup)
	groupOrder := make([]string, 0)
	badGroups := make(map[string]bool)

	for _, row := range rows {
		if row.IsEmpty() {
			result.TotalRows--
			continue
		}

		key := groupKey(row)
		if !validator.ValidateRow(row) {
			result.ErrorRows++
			badGroups[key] = true
			continue
		}

		group, ok := groups[key]
		if !ok {
			group = &orderGroup{
				orderNumber: row.Get("order_number"),
				supplier:    row.Get("supplier"),
				firstLine:   row.LineNumber,
			}
			if raw := row.Get("purchase_date"); raw != "" {
				date, err := time.Parse(importDateFormat, raw)
				if err == nil {
					group.purchaseDate = &date
				}
			}
			groups[key] = group
			groupOrder = append(groupOrder, key)
		}

		quantity, err := decimal.NewFromString(row.Get("quantity"))
		if err != nil {
			errs.AddTypeError(row.LineNumber, "quantity", "decimal", row.Get("quantity"))
			result.ErrorRows++
			badGroups[key] = true
			continue
		}

		group.products = append(group.products, CreateOrderProductInput{
			SKU:      row.Get("sku"),
			Name:     row.Get("name"),
			Quantity: quantity,
			Price:    row.Get("price"),
		})
	}

	for _, validationErr := range validator.Errors().Errors() {
		errs.Add(validationErr)
	}

	for _, key := range groupOrder {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		group := groups[key]
		if badGroups[key] {
			continue
		}

		req := CreateSupplierOrderRequest{
			Supplier:     group.supplier,
			OrderNumber:  group.orderNumber,
			PurchaseDate: group.purchaseDate,
			Products:     group.products,
		}
		created, err := s.orders.Create(ctx, req)
		if err != nil {
			errs.AddValidationError(group.firstLine, "order_number", csvimport.ErrCodeImportValidation, err.Error())
			result.ErrorRows += len(group.products)
			continue
		}

		result.ImportedOrders++
		result.ImportedRows += len(group.products)
		result.OrderNumbers = append(result.OrderNumbers, created.OrderNumber)
	}

	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()

	return result, nil
}

// groupKey folds rows into orders by explicit order number, falling back
// to supplier plus purchase date
func groupKey(row *csvimport.Row) string {
	if number := row.Get("order_number"); number != "" {
		return "number:" + number
	}
	return "supplier:" + row.Get("supplier") + "|" + row.Get("purchase_date")
}
