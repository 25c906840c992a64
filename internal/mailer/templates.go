package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

const baseLayout = `<!DOCTYPE html>
<html lang="id">
  <head>
    <meta charset="UTF-8" />
    <title>{{.Title}}</title>
  </head>
  <body style="background-color: #f4f4f4; font-family: sans-serif; padding: 48px;">
    <div style="max-width: 480px; margin: auto; background: #fff; border-radius: 8px; padding: 32px; box-shadow: 0 0 8px rgba(0,0,0,0.05);">
      {{.Body}}
      <p style="margin-top: 32px; font-size: 12px; color: #aaa;">
        If you did not request this email, you can safely ignore it.
      </p>
    </div>
  </body>
</html>`

const verifyEmailBody = `<h2 style="color: #2d87f0;">Hi {{.Name}},</h2>
<p>Thanks for signing up. Please confirm your email address by clicking the button below.</p>
<p style="margin-top: 24px;">
  <a href="{{.URL}}" style="background: #2d87f0; color: #fff; padding: 12px 24px; border-radius: 4px; text-decoration: none;">Verify Email</a>
</p>
<p style="margin-top: 24px; font-size: 13px; color: #888;">This link expires in 24 hours.</p>`

const resetPasswordBody = `<h2 style="color: #2d87f0;">Hi {{.Name}},</h2>
<p>We received a request to reset your password. Click the button below to choose a new one.</p>
<p style="margin-top: 24px;">
  <a href="{{.URL}}" style="background: #2d87f0; color: #fff; padding: 12px 24px; border-radius: 4px; text-decoration: none;">Reset Password</a>
</p>
<p style="margin-top: 24px; font-size: 13px; color: #888;">This link expires in 30 minutes.</p>`

var (
	layoutTmpl     = template.Must(template.New("layout").Parse(baseLayout))
	verifyBodyTmpl = template.Must(template.New("verify").Parse(verifyEmailBody))
	resetBodyTmpl  = template.Must(template.New("reset").Parse(resetPasswordBody))
)

type mailData struct {
	Name string
	URL  string
}

func renderInLayout(title string, bodyTmpl *template.Template, data mailData) (string, error) {
	var body bytes.Buffer
	if err := bodyTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to render mail body: %w", err)
	}

	var out bytes.Buffer
	err := layoutTmpl.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body.String())})
	if err != nil {
		return "", fmt.Errorf("failed to render mail layout: %w", err)
	}
	return out.String(), nil
}

func renderVerifyEmail(name, url string) (string, error) {
	return renderInLayout(SubjectVerifyEmail, verifyBodyTmpl, mailData{Name: name, URL: url})
}

func renderResetPassword(name, url string) (string, error) {
	return renderInLayout(SubjectResetPassword, resetBodyTmpl, mailData{Name: name, URL: url})
}
