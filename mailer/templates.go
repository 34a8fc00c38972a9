package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"pawphysio/models"
)

type emailTemplate struct {
	subject string
	body    *template.Template
}

// Templates are compiled once at package load. Spanish is the primary
// audience; English is the fallback for any other language code.
var templates = map[string]map[string]emailTemplate{
	models.EmailTypeWelcome: {
		"es": {
			subject: "Bienvenido a PawPhysio",
			body: template.Must(template.New("welcome_es").Parse(
				`<p>Hola {{.Name}},</p>
<p>Tu cuenta en PawPhysio está lista. Ya puedes reservar sesiones de fisioterapia para tu perro.</p>
<p>El equipo de PawPhysio</p>`)),
		},
		"en": {
			subject: "Welcome to PawPhysio",
			body: template.Must(template.New("welcome_en").Parse(
				`<p>Hi {{.Name}},</p>
<p>Your PawPhysio account is ready. You can now book physiotherapy sessions for your dog.</p>
<p>The PawPhysio team</p>`)),
		},
	},
	models.EmailTypeBookingConfirmation: {
		"es": {
			subject: "Confirmación de tu reserva",
			body: template.Must(template.New("booking_confirmation_es").Parse(
				`<p>Hola {{.Name}},</p>
<p>Tu sesión de <b>{{.Service}}</b> para <b>{{.Dog}}</b> está confirmada para el {{.Date}}.</p>
<p>El equipo de PawPhysio</p>`)),
		},
		"en": {
			subject: "Your booking is confirmed",
			body: template.Must(template.New("booking_confirmation_en").Parse(
				`<p>Hi {{.Name}},</p>
<p>Your <b>{{.Service}}</b> session for <b>{{.Dog}}</b> is confirmed for {{.Date}}.</p>
<p>The PawPhysio team</p>`)),
		},
	},
	models.EmailTypeBookingCancellation: {
		"es": {
			subject: "Tu reserva ha sido cancelada",
			body: template.Must(template.New("booking_cancellation_es").Parse(
				`<p>Hola {{.Name}},</p>
<p>Tu sesión de <b>{{.Service}}</b> para <b>{{.Dog}}</b> del {{.Date}} ha sido cancelada.</p>
<p>El equipo de PawPhysio</p>`)),
		},
		"en": {
			subject: "Your booking was cancelled",
			body: template.Must(template.New("booking_cancellation_en").Parse(
				`<p>Hi {{.Name}},</p>
<p>Your <b>{{.Service}}</b> session for <b>{{.Dog}}</b> on {{.Date}} was cancelled.</p>
<p>The PawPhysio team</p>`)),
		},
	},
}

// renderTemplate produces the subject and HTML body for an email type,
// falling back to English for unknown languages.
func renderTemplate(emailType, language string, data map[string]interface{}) (subject, body string, err error) {
	byLang, ok := templates[emailType]
	if !ok {
		return "", "", fmt.Errorf("unknown email type: %s", emailType)
	}

	tmpl, ok := byLang[language]
	if !ok {
		tmpl = byLang["en"]
	}

	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s template: %w", emailType, err)
	}

	return tmpl.subject, buf.String(), nil
}
