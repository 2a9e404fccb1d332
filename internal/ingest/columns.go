package ingest

import "github.com/Asif12as/wsm-warehouse/internal/reconcile/model"

// Field — каноническое поле строки продаж.
type Field string

const (
	FieldOrderID     Field = "order_id"
	FieldSKU         Field = "sku"
	FieldProductName Field = "product_name"
	FieldQuantity    Field = "quantity"
	FieldUnitPrice   Field = "unit_price"
	FieldTotal       Field = "total_amount"
	FieldFees        Field = "fees"
	FieldOrderDate   Field = "order_date"
	FieldStatus      Field = "status"
)

var fieldOrder = []Field{
	FieldOrderID, FieldSKU, FieldProductName, FieldQuantity, FieldUnitPrice,
	FieldTotal, FieldFees, FieldOrderDate, FieldStatus,
}

var requiredFields = []Field{FieldOrderID, FieldSKU, FieldProductName, FieldQuantity, FieldUnitPrice}

// columnAliases: варианты заголовков по площадкам, первый найденный побеждает.
var columnAliases = map[model.Marketplace]map[Field][]string{
	model.Amazon: {
		FieldOrderID:     {"order-id", "Order ID", "OrderId", "order_id", "Amazon Order ID"},
		FieldSKU:         {"sku", "SKU", "ASIN", "Product SKU", "Item SKU"},
		FieldProductName: {"product-name", "Product Name", "Title", "Item Name"},
		FieldQuantity:    {"quantity", "Quantity", "Qty", "Quantity Purchased"},
		FieldUnitPrice:   {"unit-price", "Unit Price", "Price", "Item Price"},
		FieldTotal:       {"total", "Total", "Amount", "Order Total"},
		FieldFees:        {"fees", "Fees", "Amazon Fee", "Referral Fee", "Commission"},
		FieldOrderDate:   {"order-date", "Order Date", "Purchase Date", "Date"},
		FieldStatus:      {"status", "Status", "Order Status", "Fulfillment Status"},
	},
	model.EBay: {
		FieldOrderID:     {"Sales Record Number", "Order ID", "Transaction ID"},
		FieldSKU:         {"Item ID", "Custom Label", "SKU", "Product ID"},
		FieldProductName: {"Title", "Item Title", "Product Name"},
		FieldQuantity:    {"Quantity", "Qty", "Quantity Sold"},
		FieldUnitPrice:   {"Price", "Sale Price", "Unit Price"},
		FieldTotal:       {"Total", "Sale Amount", "Total Price"},
		FieldFees:        {"eBay Fee", "Final Value Fee", "Fees"},
		FieldOrderDate:   {"Sale Date", "Order Date", "Transaction Date"},
		FieldStatus:      {"Order Status", "Status"},
	},
	// у Shopify "Name" — это номер заказа (#1001), товар лежит в "Lineitem name"
	model.Shopify: {
		FieldOrderID:     {"Name", "Order", "Order Number", "Order ID"},
		FieldSKU:         {"Lineitem sku", "SKU", "Variant SKU", "Product SKU"},
		FieldProductName: {"Lineitem name", "Product Name", "Title"},
		FieldQuantity:    {"Lineitem quantity", "Quantity", "Qty"},
		FieldUnitPrice:   {"Lineitem price", "Price", "Unit Price", "Product Price"},
		FieldTotal:       {"Total", "Line Total", "Amount"},
		FieldFees:        {"Fees", "Transaction Fee", "Payment Fee"},
		FieldOrderDate:   {"Created at", "Order Date", "Date"},
		FieldStatus:      {"Fulfillment Status", "Status", "Order Status"},
	},
	model.Walmart: {
		FieldOrderID:     {"Purchase Order", "PO Number", "Order ID"},
		FieldSKU:         {"SKU", "Product SKU", "Item SKU", "WM SKU"},
		FieldProductName: {"Product Name", "Item Name", "Title"},
		FieldQuantity:    {"Quantity", "Qty", "Units"},
		FieldUnitPrice:   {"Unit Price", "Price", "Item Price"},
		FieldTotal:       {"Total", "Amount", "Line Total"},
		FieldFees:        {"Commission", "Walmart Fee", "Fees"},
		FieldOrderDate:   {"Order Date", "Date", "Purchase Date"},
		FieldStatus:      {"Status", "Order Status", "Fulfillment Status"},
	},
}

// genericAliases — для площадок без своей таблицы: объединение всех, без повторов.
var genericAliases = func() map[Field][]string {
	out := make(map[Field][]string, len(fieldOrder))
	for _, f := range fieldOrder {
		seen := make(map[string]bool)
		for _, mp := range []model.Marketplace{model.Amazon, model.EBay, model.Shopify, model.Walmart} {
			for _, a := range columnAliases[mp][f] {
				if !seen[a] {
					seen[a] = true
					out[f] = append(out[f], a)
				}
			}
		}
	}
	return out
}()

func aliasesFor(mp model.Marketplace) map[Field][]string {
	if a, ok := columnAliases[mp]; ok {
		return a
	}
	return genericAliases
}
