package utils

import (
	"bytes"
	"html/template"

	"furniture_back_end/internal/models"
)

type orderLine struct {
	Product string
	Qty     int
}

type orderPlacedData struct {
	Name    string
	GroupID string
	Lines   []orderLine
	Total   float64
	Mode    string
}

type statusChangedData struct {
	Name    string
	GroupID string
	Product string
	Status  string
}

var orderPlacedTmpl = template.Must(template.New("order_placed").Parse(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Order {{.GroupID}} confirmed</h2>
		<p>Hello {{.Name}},</p>
		<p>Thank you for your order. You will receive it within 7 days from today.</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Product</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Qty</th>
				</tr>
			</thead>
			<tbody>
			{{range .Lines}}
				<tr>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.Product}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.Qty}}</td>
				</tr>
			{{end}}
			</tbody>
		</table>
		<p><strong>Total:</strong> {{printf "%.2f" .Total}} ({{.Mode}})</p>
	</div>
</body>
</html>`))

var statusChangedTmpl = template.Must(template.New("status_changed").Parse(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Order {{.GroupID}} update</h2>
		<p>Hello {{.Name}},</p>
		<p>Your order for <strong>{{.Product}}</strong> is now <strong>{{.Status}}</strong>.</p>
	</div>
</body>
</html>`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// OrderPlacedHTML : names associe un product id à son nom affichable.
func OrderPlacedHTML(name, groupID string, orders []models.Order, names map[string]string) (string, error) {
	data := orderPlacedData{Name: name, GroupID: groupID}
	for _, o := range orders {
		label := names[o.ProductID]
		if label == "" {
			label = o.ProductID
		}
		data.Lines = append(data.Lines, orderLine{Product: label, Qty: o.Qty})
		data.Total = o.Total
		data.Mode = string(o.Mode)
	}
	return render(orderPlacedTmpl, data)
}

func StatusChangedHTML(name, productName string, o models.Order) (string, error) {
	return render(statusChangedTmpl, statusChangedData{
		Name:    name,
		GroupID: o.OrderGroupID,
		Product: productName,
		Status:  string(o.Status),
	})
}
