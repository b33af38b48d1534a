package email

import (
	"bytes"
	"html/template"
)

// TemplateData son los datos comunes de las plantillas transaccionales.
type TemplateData struct {
	SchoolName      string
	UserName        string
	VerificationURL string
	ValidFor        string
}

var verificationTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body>
  <h2>Hello{{if .UserName}}, {{.UserName}}{{end}}!</h2>
  <p>Thank you for registering on the <strong>{{.SchoolName}}</strong> educational platform.</p>
  <p>To activate your account, please confirm your email address:</p>
  <p><a href="{{.VerificationURL}}">Confirm email</a></p>
  <p>Or paste this link into your browser:</p>
  <p>{{.VerificationURL}}</p>
  <p><strong>The link is valid for {{.ValidFor}}.</strong></p>
  <p>If you did not register, please ignore this email.</p>
</body>
</html>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body>
  <h1>Welcome!</h1>
  <p>Your account has been activated.</p>
  <h2>Hello{{if .UserName}}, {{.UserName}}{{end}}!</h2>
  <p>We are glad to welcome you to the <strong>{{.SchoolName}}</strong> educational platform.</p>
  <p>If you have any questions, please contact the system administrator.</p>
</body>
</html>`))

func RenderVerification(data TemplateData) (string, error) {
	return render(verificationTmpl, data)
}

func RenderWelcome(data TemplateData) (string, error) {
	return render(welcomeTmpl, data)
}

func render(t *template.Template, data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
