package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const (
	TemplatePasswordReset  = "password_reset"
	TemplateContactMessage = "contact_message"
)

type emailTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

// Renderer turns notifications into messages.
type Renderer struct {
	templates map[string]emailTemplate
}

func NewRenderer() *Renderer {
	r := &Renderer{templates: make(map[string]emailTemplate)}
	r.mustAdd(TemplatePasswordReset,
		`Reset your password`,
		`Hello {{.Name}},

You're receiving this email because you requested a password reset for your account.

Please go to the following page and choose a new password:

{{.ResetURL}}

The link expires in {{.ExpiresIn}}. If you didn't request this, you can ignore this email.
`,
		`<p>Hello {{.Name}},</p>
<p>You're receiving this email because you requested a password reset for your account.</p>
<p><a href="{{.ResetURL}}">Choose a new password</a></p>
<p>The link expires in {{.ExpiresIn}}. If you didn't request this, you can ignore this email.</p>
`)
	r.mustAdd(TemplateContactMessage,
		`[Contact] {{.Subject}}`,
		`New message from {{.Name}} <{{.Email}}>:

{{.Message}}
`,
		`<p>New message from {{.Name}} &lt;{{.Email}}&gt;:</p>
<blockquote>{{.Message}}</blockquote>
`)
	return r
}

func (r *Renderer) mustAdd(name, subject, text, html string) {
	r.templates[name] = emailTemplate{
		subject: texttemplate.Must(texttemplate.New(name + ".subject").Option("missingkey=error").Parse(subject)),
		text:    texttemplate.Must(texttemplate.New(name + ".txt").Option("missingkey=error").Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New(name + ".html").Option("missingkey=error").Parse(html)),
	}
}

func (r *Renderer) Render(n Notification) (Message, error) {
	tmpl, ok := r.templates[n.Template]
	if !ok {
		return Message{}, fmt.Errorf("unknown email template %q", n.Template)
	}

	var subject, text, html bytes.Buffer
	if err := tmpl.subject.Execute(&subject, n.Data); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", n.Template, err)
	}
	if err := tmpl.text.Execute(&text, n.Data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", n.Template, err)
	}
	if err := tmpl.html.Execute(&html, n.Data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", n.Template, err)
	}

	return Message{
		To:      n.To,
		ToName:  n.ToName,
		Subject: subject.String(),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
