package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"backend/internal/models"
)

type itemView struct {
	Name      string
	Qty       int
	UnitPrice string
	Extended  string
	Image     string
}

type summaryView struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
	Items   []itemView
	Total   string
}

var summaryHTML = template.Must(template.New("order").Parse(`<h2>New Order</h2>
<p><b>Name:</b> {{.Name}}</p>
<p><b>Email:</b> {{.Email}}</p>
<p><b>Phone:</b> {{.Phone}}</p>
<p><b>Address:</b> {{.Address}}</p>
<p><b>Notes:</b> {{.Notes}}</p>
<h3>Items</h3>
<ul>
{{range .Items}}<li>{{.Name}} x{{.Qty}} - ${{.Extended}}{{if .Image}}<br><img src="{{.Image}}" width="100"/>{{end}}</li>
{{end}}</ul>
<p><b>Total:</b> ${{.Total}}</p>
`))

// renderSummary produces the plain-text and HTML bodies for one order.
func renderSummary(order models.Order, user models.User) (string, string, error) {
	view := summaryView{
		Name:    user.Name,
		Email:   user.Email,
		Phone:   order.Customer.Phone,
		Address: order.Customer.Address,
		Notes:   order.Customer.Notes,
		Total:   fmt.Sprintf("%.2f", order.Total),
	}
	if view.Notes == "" {
		view.Notes = "None"
	}

	for _, item := range order.Items {
		view.Items = append(view.Items, itemView{
			Name:      item.Name,
			Qty:       item.Qty,
			UnitPrice: fmt.Sprintf("%.2f", item.Price),
			Extended:  fmt.Sprintf("%.2f", item.Price*float64(item.Qty)),
			Image:     item.Image,
		})
	}

	var text strings.Builder
	text.WriteString("New order received:\n")
	fmt.Fprintf(&text, "Customer: %s (%s)\n", view.Name, view.Email)
	fmt.Fprintf(&text, "Phone: %s\n", view.Phone)
	fmt.Fprintf(&text, "Address: %s\n", view.Address)
	fmt.Fprintf(&text, "Notes: %s\n", view.Notes)
	text.WriteString("Items:\n")
	for _, item := range view.Items {
		fmt.Fprintf(&text, "- %s x%d @ $%s = $%s", item.Name, item.Qty, item.UnitPrice, item.Extended)
		if item.Image != "" {
			fmt.Fprintf(&text, " (image: %s)", item.Image)
		}
		text.WriteString("\n")
	}
	fmt.Fprintf(&text, "Total: $%s\n", view.Total)

	var html bytes.Buffer
	if err := summaryHTML.Execute(&html, view); err != nil {
		return "", "", err
	}

	return text.String(), html.String(), nil
}
