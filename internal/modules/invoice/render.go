// Package invoice renders order invoices as HTML and emails them.
package invoice

import (
	"bytes"
	"html/template"

	"github.com/pkg/errors"

	"sheetpos/internal/modules/order"
)

// Company is the seller block printed on every invoice.
type Company struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Invoice {{.Order.OrderID}}</title></head>
<body style="font-family: Arial, sans-serif; color: #222; max-width: 640px; margin: 0 auto;">
  <h1 style="border-bottom: 2px solid #222; padding-bottom: 8px;">{{.Company.Name}}</h1>
  <p>
    {{if .Company.Address}}{{.Company.Address}}<br>{{end}}
    {{if .Company.Phone}}{{.Company.Phone}}<br>{{end}}
    {{if .Company.Email}}{{.Company.Email}}{{end}}
  </p>
  <h2>Invoice {{.Order.OrderID}}</h2>
  <p>Date: {{.Order.OrderDate}}</p>
  <h3>Bill To</h3>
  <p>
    {{.Order.CustomerName}}<br>
    {{if .Order.CustomerPhone}}{{.Order.CustomerPhone}}<br>{{end}}
    {{if .Order.CustomerAddress}}{{.Order.CustomerAddress}}{{end}}
  </p>
  <table width="100%" cellpadding="6" style="border-collapse: collapse;">
    <tr style="background: #f0f0f0;">
      <th align="left">Item</th><th align="right">Qty</th>
      <th align="right">Unit Price</th><th align="right">Total</th>
    </tr>
    {{range .Order.Items}}
    <tr style="border-bottom: 1px solid #ddd;">
      <td>{{.Name}}</td>
      <td align="right">{{.Quantity}}</td>
      <td align="right">{{printf "%.2f" .UnitPrice}}</td>
      <td align="right">{{printf "%.2f" .TotalPrice}}</td>
    </tr>
    {{end}}
  </table>
  <table align="right" cellpadding="4">
    <tr><td>Subtotal:</td><td align="right">{{printf "%.2f" .Order.Subtotal}}</td></tr>
    {{if gt .Order.DiscountAmount 0.0}}<tr><td>Discount:</td><td align="right">-{{printf "%.2f" .Order.DiscountAmount}}</td></tr>{{end}}
    {{if gt .Order.DeliveryFee 0.0}}<tr><td>Delivery:</td><td align="right">{{printf "%.2f" .Order.DeliveryFee}}</td></tr>{{end}}
    <tr><td><strong>Total:</strong></td><td align="right"><strong>{{printf "%.2f" .Order.TotalAmount}}</strong></td></tr>
    {{if eq .Order.PaymentMethod "Cash"}}
    <tr><td>Received:</td><td align="right">{{printf "%.2f" .Order.AmountReceived}}</td></tr>
    <tr><td>Change:</td><td align="right">{{printf "%.2f" .Order.Change}}</td></tr>
    {{end}}
  </table>
  <p style="clear: both; margin-top: 48px; font-size: 12px; color: #888;">
    Payment method: {{.Order.PaymentMethod}}. Thank you for your purchase.
  </p>
</body>
</html>`))

// Render produces the invoice HTML for an order. Customer-supplied fields go
// through the template's auto-escaping.
func Render(o *order.Order, company Company) (string, error) {
	var buf bytes.Buffer
	err := invoiceTmpl.Execute(&buf, struct {
		Order   *order.Order
		Company Company
	}{o, company})
	if err != nil {
		return "", errors.Wrap(err, "render invoice")
	}
	return buf.String(), nil
}
