package domain

import "time"

type ColumnType string

const (
	ColumnDatetime ColumnType = "datetime"
	ColumnText     ColumnType = "text"
	ColumnFloat    ColumnType = "float"
)

type Column struct {
	Name string
	Type ColumnType
}

const (
	ColumnTimestamp        = "timestamp"
	ColumnDescriptionLines = "descriptionLines"
)

// CanonicalSchema is the column contract every activity table leaves the
// normalizer with, in output order.
var CanonicalSchema = []Column{
	{Name: "timestamp", Type: ColumnDatetime},
	{Name: "accountNumber", Type: ColumnText},
	{Name: "accountTitle", Type: ColumnText},
	{Name: "symbol", Type: ColumnText},
	{Name: "description", Type: ColumnText},
	{Name: "descriptionLines", Type: ColumnText},
	{Name: "tradeAction", Type: ColumnText},
	{Name: "quantity", Type: ColumnFloat},
	{Name: "price", Type: ColumnFloat},
	{Name: "fees", Type: ColumnFloat},
	{Name: "commissions", Type: ColumnFloat},
	{Name: "netAmount", Type: ColumnFloat},
	{Name: "currencyCode", Type: ColumnText},
	{Name: "settleDate", Type: ColumnDatetime},
	{Name: "tradeDate", Type: ColumnDatetime},
	{Name: "tradeNumber", Type: ColumnText},
	{Name: "transferDirection", Type: ColumnText},
	{Name: "activityType", Type: ColumnText},
	{Name: "tagNumber", Type: ColumnText},
	{Name: "trailer", Type: ColumnText},
	{Name: "accountType", Type: ColumnText},
	{Name: "underlyingSymbol", Type: ColumnText},
	{Name: "optionType", Type: ColumnText},
	{Name: "strikePrice", Type: ColumnFloat},
	{Name: "expirationDate", Type: ColumnDatetime},
}

func CanonicalColumn(name string) (Column, bool) {
	for _, column := range CanonicalSchema {
		if column.Name == name {
			return column, true
		}
	}
	return Column{}, false
}

// ActivityRecord is one normalized row. Nil pointers are nulls.
type ActivityRecord struct {
	Index             int
	Timestamp         time.Time
	AccountNumber     *string
	AccountTitle      *string
	Symbol            *string
	Description       *string
	DescriptionLines  *string
	TradeAction       *string
	Quantity          *float64
	Price             *float64
	Fees              *float64
	Commissions       *float64
	NetAmount         *float64
	CurrencyCode      *string
	SettleDate        *time.Time
	TradeDate         *time.Time
	TradeNumber       *string
	TransferDirection *string
	ActivityType      *string
	TagNumber         *string
	Trailer           *string
	AccountType       *string
	UnderlyingSymbol  *string
	OptionType        *string
	StrikePrice       *float64
	ExpirationDate    *time.Time
}

func (r *ActivityRecord) textField(name string) **string {
	switch name {
	case "accountNumber":
		return &r.AccountNumber
	case "accountTitle":
		return &r.AccountTitle
	case "symbol":
		return &r.Symbol
	case "description":
		return &r.Description
	case "descriptionLines":
		return &r.DescriptionLines
	case "tradeAction":
		return &r.TradeAction
	case "currencyCode":
		return &r.CurrencyCode
	case "tradeNumber":
		return &r.TradeNumber
	case "transferDirection":
		return &r.TransferDirection
	case "activityType":
		return &r.ActivityType
	case "tagNumber":
		return &r.TagNumber
	case "trailer":
		return &r.Trailer
	case "accountType":
		return &r.AccountType
	case "underlyingSymbol":
		return &r.UnderlyingSymbol
	case "optionType":
		return &r.OptionType
	default:
		return nil
	}
}

func (r *ActivityRecord) floatField(name string) **float64 {
	switch name {
	case "quantity":
		return &r.Quantity
	case "price":
		return &r.Price
	case "fees":
		return &r.Fees
	case "commissions":
		return &r.Commissions
	case "netAmount":
		return &r.NetAmount
	case "strikePrice":
		return &r.StrikePrice
	default:
		return nil
	}
}

func (r *ActivityRecord) timeField(name string) **time.Time {
	switch name {
	case "settleDate":
		return &r.SettleDate
	case "tradeDate":
		return &r.TradeDate
	case "expirationDate":
		return &r.ExpirationDate
	default:
		return nil
	}
}

// Value returns the cell for a canonical column: nil, string, float64 or
// time.Time. Storage adapters use it to stay column-driven.
func (r ActivityRecord) Value(name string) any {
	if name == ColumnTimestamp {
		return r.Timestamp
	}
	if f := r.textField(name); f != nil {
		if *f == nil {
			return nil
		}
		return **f
	}
	if f := r.floatField(name); f != nil {
		if *f == nil {
			return nil
		}
		return **f
	}
	if f := r.timeField(name); f != nil {
		if *f == nil {
			return nil
		}
		return **f
	}
	return nil
}

// ActivityTable is sorted ascending by timestamp with Records[i].Index == i.
type ActivityTable struct {
	Columns []Column
	Records []ActivityRecord
}

func (t ActivityTable) Len() int {
	return len(t.Records)
}

func (t ActivityTable) HasColumn(name string) bool {
	for _, column := range t.Columns {
		if column.Name == name {
			return true
		}
	}
	return false
}

func (t ActivityTable) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, column := range t.Columns {
		names = append(names, column.Name)
	}
	return names
}

// Span returns the first and last timestamps, or false for an empty table.
func (t ActivityTable) Span() (time.Time, time.Time, bool) {
	if len(t.Records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.Records[0].Timestamp, t.Records[len(t.Records)-1].Timestamp, true
}
