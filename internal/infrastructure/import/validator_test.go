package csvimport

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFieldRuleBuilder(t *testing.T) {
	t.Run("builds rule with all options", func(t *testing.T) {
		rule := Field("price").
			Required().
			Decimal().
			MinValue(decimal.NewFromInt(0)).
			MaxValue(decimal.NewFromInt(1000)).
			Build()

		assert.Equal(t, "price", rule.Column)
		assert.Equal(t, TypeDecimal, rule.Type)
		assert.True(t, rule.Required)
		assert.True(t, rule.MinValue.Equal(decimal.NewFromInt(0)))
		assert.True(t, rule.MaxValue.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("defaults to string type", func(t *testing.T) {
		rule := Field("name").Build()
		assert.Equal(t, TypeString, rule.Type)
		assert.False(t, rule.Required)
		assert.Equal(t, "2006-01-02", rule.DateFormat)
	})

	t.Run("sets field types", func(t *testing.T) {
		cases := []struct {
			name     string
			builder  *FieldRuleBuilder
			expected FieldType
		}{
			{"string", Field("f").String(), TypeString},
			{"int", Field("f").Int(), TypeInt},
			{"decimal", Field("f").Decimal(), TypeDecimal},
			{"date", Field("f").Date(), TypeDate},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				assert.Equal(t, tc.expected, tc.builder.Build().Type)
			})
		}
	})

	t.Run("sets length constraints", func(t *testing.T) {
		rule := Field("sku").MinLength(1).MaxLength(64).Build()
		assert.Equal(t, 1, rule.MinLength)
		assert.Equal(t, 64, rule.MaxLength)
	})

	t.Run("sets pattern", func(t *testing.T) {
		rule := Field("sku").Pattern(`^[A-Z]+-\d+$`, "uppercase prefix and number").Build()
		assert.NotNil(t, rule.Pattern)
		assert.True(t, rule.Pattern.MatchString("SKU-42"))
		assert.False(t, rule.Pattern.MatchString("sku42"))
	})
}

func TestFieldValidator(t *testing.T) {
	t.Run("Required field validation", func(t *testing.T) {
		rules := []FieldRule{
			Field("sku").Required().Build(),
			Field("name").Required().Build(),
			Field("description").Build(), // Optional
		}
		validator := NewFieldValidator(rules, 10)

		// Valid row
		row1 := &Row{
			LineNumber: 2,
			Data:       map[string]string{"sku": "SKU-A", "name": "Widget", "description": ""},
		}
		assert.True(t, validator.ValidateRow(row1))

		// Missing required field
		row2 := &Row{
			LineNumber: 3,
			Data:       map[string]string{"sku": "", "name": "Widget"},
		}
		assert.False(t, validator.ValidateRow(row2))

		errs := validator.Errors().Errors()
		assert.Len(t, errs, 1)
		assert.Equal(t, ErrCodeImportRequiredField, errs[0].Code)
		assert.Equal(t, "sku", errs[0].Column)
	})

	t.Run("Type validation - integer", func(t *testing.T) {
		rules := []FieldRule{
			Field("quantity").Int().Build(),
		}
		validator := NewFieldValidator(rules, 10)

		row1 := &Row{LineNumber: 2, Data: map[string]string{"quantity": "100"}}
		assert.True(t, validator.ValidateRow(row1))

		row2 := &Row{LineNumber: 3, Data: map[string]string{"quantity": "abc"}}
		assert.False(t, validator.ValidateRow(row2))
	})

	t.Run("Type validation - decimal", func(t *testing.T) {
		rules := []FieldRule{
			Field("price").Decimal().Build(),
		}
		validator := NewFieldValidator(rules, 10)

		validCases := []string{"100.50", "0.01", "-50.00", "1000000.999"}
		for _, val := range validCases {
			validator.Reset()
			row := &Row{LineNumber: 2, Data: map[string]string{"price": val}}
			assert.True(t, validator.ValidateRow(row), "should accept: %s", val)
		}

		validator.Reset()
		row := &Row{LineNumber: 2, Data: map[string]string{"price": "not-a-number"}}
		assert.False(t, validator.ValidateRow(row))
	})

	t.Run("Type validation - date", func(t *testing.T) {
		rules := []FieldRule{
			Field("purchase_date").Date().DateFormat("2006-01-02").Build(),
		}
		validator := NewFieldValidator(rules, 10)

		row1 := &Row{LineNumber: 2, Data: map[string]string{"purchase_date": "2026-03-07"}}
		assert.True(t, validator.ValidateRow(row1))

		row2 := &Row{LineNumber: 3, Data: map[string]string{"purchase_date": "07/03/2026"}}
		assert.False(t, validator.ValidateRow(row2))

		errs := validator.Errors().Errors()
		assert.Len(t, errs, 1)
		assert.Equal(t, ErrCodeImportInvalidType, errs[0].Code)
	})

	t.Run("Length validation", func(t *testing.T) {
		rules := []FieldRule{
			Field("sku").MinLength(3).MaxLength(10).Build(),
		}
		validator := NewFieldValidator(rules, 10)

		row1 := &Row{LineNumber: 2, Data: map[string]string{"sku": "SKU-001"}}
		assert.True(t, validator.ValidateRow(row1))

		row2 := &Row{LineNumber: 3, Data: map[string]string{"sku": "AB"}}
		assert.False(t, validator.ValidateRow(row2))

		row3 := &Row{LineNumber: 4, Data: map[string]string{"sku": "WAY-TOO-LONG-SKU"}}
		assert.False(t, validator.ValidateRow(row3))

		errs := validator.Errors().Errors()
		assert.Len(t, errs, 2)
		assert.Equal(t, ErrCodeImportInvalidLength, errs[0].Code)
	})

	t.Run("Range validation", func(t *testing.T) {
		rules := []FieldRule{
			Field("quantity").Decimal().
				MinValue(decimal.NewFromInt(1)).
				MaxValue(decimal.NewFromInt(1000)).
				Build(),
		}
		validator := NewFieldValidator(rules, 10)

		row1 := &Row{LineNumber: 2, Data: map[string]string{"quantity": "500"}}
		assert.True(t, validator.ValidateRow(row1))

		row2 := &Row{LineNumber: 3, Data: map[string]string{"quantity": "0"}}
		assert.False(t, validator.ValidateRow(row2))

		row3 := &Row{LineNumber: 4, Data: map[string]string{"quantity": "5000"}}
		assert.False(t, validator.ValidateRow(row3))
	})

	t.Run("Pattern validation", func(t *testing.T) {
		rules := []FieldRule{
			Field("sku").Pattern(`^SKU-[A-Z0-9]+$`, "SKU-<alphanumeric>").Build(),
		}
		validator := NewFieldValidator(rules, 10)

		row1 := &Row{LineNumber: 2, Data: map[string]string{"sku": "SKU-A1"}}
		assert.True(t, validator.ValidateRow(row1))

		row2 := &Row{LineNumber: 3, Data: map[string]string{"sku": "sku_a1"}}
		assert.False(t, validator.ValidateRow(row2))

		errs := validator.Errors().Errors()
		assert.Len(t, errs, 1)
		assert.Equal(t, ErrCodeImportPatternMismatch, errs[0].Code)
	})

	t.Run("Uniqueness within file", func(t *testing.T) {
		rules := []FieldRule{
			Field("sku").Unique().Build(),
		}
		validator := NewFieldValidator(rules, 10)

		row1 := &Row{LineNumber: 2, Data: map[string]string{"sku": "SKU-A"}}
		assert.True(t, validator.ValidateRow(row1))

		row2 := &Row{LineNumber: 3, Data: map[string]string{"sku": "SKU-B"}}
		assert.True(t, validator.ValidateRow(row2))

		// Duplicate of row1
		row3 := &Row{LineNumber: 4, Data: map[string]string{"sku": "SKU-A"}}
		assert.False(t, validator.ValidateRow(row3))

		errs := validator.Errors().Errors()
		assert.Len(t, errs, 1)
		assert.Equal(t, ErrCodeImportDuplicateInFile, errs[0].Code)
		assert.Contains(t, errs[0].Message, "first seen in row 2")
	})

	t.Run("Custom validation", func(t *testing.T) {
		rules := []FieldRule{
			Field("price").Custom(func(value string) error {
				if value == "free" {
					return errors.New("price cannot be free")
				}
				return nil
			}).Build(),
		}
		validator := NewFieldValidator(rules, 10)

		row1 := &Row{LineNumber: 2, Data: map[string]string{"price": "9.99"}}
		assert.True(t, validator.ValidateRow(row1))

		row2 := &Row{LineNumber: 3, Data: map[string]string{"price": "free"}}
		assert.False(t, validator.ValidateRow(row2))

		errs := validator.Errors().Errors()
		assert.Len(t, errs, 1)
		assert.Equal(t, ErrCodeImportValidation, errs[0].Code)
		assert.Contains(t, errs[0].Message, "price cannot be free")
	})

	t.Run("Empty optional fields skip validation", func(t *testing.T) {
		rules := []FieldRule{
			Field("purchase_date").Date().Build(),
		}
		validator := NewFieldValidator(rules, 10)

		row := &Row{LineNumber: 2, Data: map[string]string{"purchase_date": ""}}
		assert.True(t, validator.ValidateRow(row))
		assert.False(t, validator.Errors().HasErrors())
	})

	t.Run("Reset clears state", func(t *testing.T) {
		rules := []FieldRule{
			Field("sku").Required().Unique().Build(),
		}
		validator := NewFieldValidator(rules, 10)

		row := &Row{LineNumber: 2, Data: map[string]string{"sku": "SKU-A"}}
		assert.True(t, validator.ValidateRow(row))
		assert.False(t, validator.ValidateRow(&Row{LineNumber: 3, Data: map[string]string{"sku": "SKU-A"}}))

		validator.Reset()

		assert.False(t, validator.Errors().HasErrors())
		// After reset the same value is fresh again
		assert.True(t, validator.ValidateRow(row))
	})

	t.Run("Error collection respects max errors", func(t *testing.T) {
		rules := []FieldRule{
			Field("sku").Required().Build(),
		}
		validator := NewFieldValidator(rules, 2)

		for i := 2; i <= 6; i++ {
			validator.ValidateRow(&Row{LineNumber: i, Data: map[string]string{"sku": ""}})
		}

		ec := validator.Errors()
		assert.Len(t, ec.Errors(), 2)
		assert.Equal(t, 5, ec.TotalCount())
		assert.True(t, ec.IsTruncated())
	})
}
