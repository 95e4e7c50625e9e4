package mail

import (
	"bytes"
	"html/template"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`
<div>
  <h3>Hi {{.Username}}, welcome to Feedgram!</h3>
  <p>Enter the following code to verify your email address:</p>
  <h2>{{.Code}}</h2>
  <p>If you did not create this account you can ignore this message.</p>
</div>`))

var passwordResetTmpl = template.Must(template.New("passwordReset").Parse(`
<div>
  <h3>Hi {{.Username}},</h3>
  <p>We received a request to reset your password. Follow the link below to
  choose a new one:</p>
  <p><a href="{{.Link}}">Reset your password</a></p>
  <p>If you did not request this, your password is still safe.</p>
</div>`))

// Verification renders the registration email carrying the one-time code.
func Verification(username, code string) Message {
	var body bytes.Buffer
	_ = verificationTmpl.Execute(&body, struct {
		Username string
		Code     string
	}{username, code})

	return Message{
		Subject: "Verify your Feedgram account",
		HTML:    body.String(),
	}
}

// PasswordReset renders the reset email. link must already carry the
// URL-escaped encrypted token.
func PasswordReset(username, link string) Message {
	var body bytes.Buffer
	_ = passwordResetTmpl.Execute(&body, struct {
		Username string
		Link     string
	}{username, link})

	return Message{
		Subject: "Reset your Feedgram password",
		HTML:    body.String(),
	}
}
