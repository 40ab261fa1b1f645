package email

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const resetPasswordText = `Dear {{.Username}},

To reset your password click on the following link:

{{.Link}}

If you have not requested a password reset simply ignore this message.

Sincerely,

The Microblog Team
`

const resetPasswordHTML = `<p>Dear {{.Username}},</p>
<p>
    To reset your password
    <a href="{{.Link}}">click here</a>.
</p>
<p>Alternatively, you can paste the following link in your browser's address bar:</p>
<p>{{.Link}}</p>
<p>If you have not requested a password reset simply ignore this message.</p>
<p>Sincerely,</p>
<p>The Microblog Team</p>
`

var (
	resetText = texttemplate.Must(texttemplate.New("reset_password.txt").Parse(resetPasswordText))
	resetHTML = htmltemplate.Must(htmltemplate.New("reset_password.html").Parse(resetPasswordHTML))
)

// PasswordResetMessage письмо со ссылкой на сброс пароля
func PasswordResetMessage(from, to, username, link string) (Message, error) {
	data := map[string]string{"Username": username, "Link": link}

	var text, html bytes.Buffer
	if err := resetText.Execute(&text, data); err != nil {
		return Message{}, err
	}
	if err := resetHTML.Execute(&html, data); err != nil {
		return Message{}, err
	}

	return Message{
		Subject: "[Microblog] Reset Your Password",
		From:    from,
		To:      []string{to},
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

const errorReportText = `{{.Request}}

panic: {{.Panic}}

{{.Stack}}`

var errorText = texttemplate.Must(texttemplate.New("error_report.txt").Parse(errorReportText))

// ErrorReportMessage письмо администраторам о необработанной ошибке
func ErrorReportMessage(from string, to []string, request string, recovered any, stack []byte) (Message, error) {
	var text bytes.Buffer
	err := errorText.Execute(&text, map[string]any{
		"Request": request,
		"Panic":   recovered,
		"Stack":   string(stack),
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		Subject: "Microblog Failure",
		From:    from,
		To:      to,
		Text:    text.String(),
	}, nil
}
