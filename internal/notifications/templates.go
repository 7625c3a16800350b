package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/maldonadorepuestos/storefront/pkg/email"
	"github.com/maldonadorepuestos/storefront/pkg/outbox/payloads"
)

const (
	recipientAdmin    = "admin"
	recipientCustomer = "customer"

	customerSubject = "Recibimos tu solicitud de cotización - Maldonado Repuestos"
	noVehicle       = "No especificado"
)

const emailStyles = `body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #A51C30; color: white; padding: 20px; text-align: center; }
.content { padding: 20px; background: #f9f9f9; }
.label { font-weight: bold; color: #666; }
.message { background: white; padding: 15px; border-left: 4px solid #A51C30; }
table { width: 100%; border-collapse: collapse; }
td, th { border-bottom: 1px solid #ddd; padding: 6px; text-align: left; }`

var adminTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html><head><style>{{.Styles}}</style></head>
<body><div class="container">
<div class="header"><h1>Nueva Solicitud de Cotización</h1></div>
<div class="content">
<p><span class="label">Cotización:</span> #{{.Quote.QuoteID}}</p>
<p><span class="label">Nombre:</span> {{.Quote.Name}}</p>
<p><span class="label">Email:</span> {{.Quote.Email}}</p>
<p><span class="label">Teléfono:</span> {{.Quote.Phone}}</p>
<p><span class="label">Vehículo:</span> {{.Vehicle}}</p>
{{if .Message}}<p class="label">Mensaje:</p><div class="message">{{.Message}}</div>{{end}}
{{if .Quote.Items}}<table><tr><th>Código</th><th>Producto</th><th>Cantidad</th></tr>
{{range .Quote.Items}}<tr><td>{{.ProductCode}}</td><td>{{.ProductName}}</td><td>{{.Quantity}}</td></tr>
{{end}}</table>{{end}}
</div></div></body></html>`))

var customerTemplate = template.Must(template.New("customer").Parse(`<!DOCTYPE html>
<html><head><style>{{.Styles}}</style></head>
<body><div class="container">
<div class="header"><h1>MALDONADO REPUESTOS</h1></div>
<div class="content">
<h2>¡Hola {{.Quote.Name}}!</h2>
<p>Recibimos tu solicitud de cotización y la estamos procesando.</p>
<p>Nuestro equipo se pondrá en contacto con vos a la brevedad.</p>
<p><strong>Resumen de tu consulta:</strong></p>
{{if .Quote.Items}}<ul>{{range .Quote.Items}}<li>{{.ProductName}} ({{.ProductCode}}) x {{.Quantity}}</li>{{end}}</ul>{{end}}
{{if .Message}}<div class="message">{{.Message}}</div>{{end}}
<p>¡Gracias por elegirnos!</p>
</div></div></body></html>`))

type templateData struct {
	Styles  template.CSS
	Quote   payloads.QuoteCreatedEvent
	Vehicle string
	Message string
}

type outgoing struct {
	recipient string
	message   email.Message
}

// quoteEmails builds the shop alert and the customer receipt. The shop
// alert is skipped when no admin address is configured.
func quoteEmails(event payloads.QuoteCreatedEvent, adminEmail string) ([]outgoing, error) {
	data := templateData{
		Styles:  template.CSS(emailStyles),
		Quote:   event,
		Vehicle: noVehicle,
	}
	if event.VehicleInfo != nil && strings.TrimSpace(*event.VehicleInfo) != "" {
		data.Vehicle = *event.VehicleInfo
	}
	if event.Message != nil {
		data.Message = *event.Message
	}

	out := make([]outgoing, 0, 2)
	if adminEmail != "" {
		html, err := render(adminTemplate, data)
		if err != nil {
			return nil, err
		}
		out = append(out, outgoing{
			recipient: recipientAdmin,
			message: email.Message{
				ToAddress: adminEmail,
				Subject:   fmt.Sprintf("Nueva Cotización - %s", event.Name),
				HTML:      html,
				Text:      plainSummary(event, data.Vehicle),
			},
		})
	}

	html, err := render(customerTemplate, data)
	if err != nil {
		return nil, err
	}
	out = append(out, outgoing{
		recipient: recipientCustomer,
		message: email.Message{
			ToName:    event.Name,
			ToAddress: event.Email,
			Subject:   customerSubject,
			HTML:      html,
			Text:      plainSummary(event, data.Vehicle),
		},
	})
	return out, nil
}

func render(tmpl *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func plainSummary(event payloads.QuoteCreatedEvent, vehicle string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cotización #%d\nNombre: %s\nEmail: %s\nTeléfono: %s\nVehículo: %s\n", event.QuoteID, event.Name, event.Email, event.Phone, vehicle)
	for _, item := range event.Items {
		fmt.Fprintf(&b, "- %s (%s) x %d\n", item.ProductName, item.ProductCode, item.Quantity)
	}
	if event.Message != nil && *event.Message != "" {
		fmt.Fprintf(&b, "Mensaje: %s\n", *event.Message)
	}
	return b.String()
}
