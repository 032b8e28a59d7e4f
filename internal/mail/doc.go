// Package mail sends plain-text notification emails.
//
// Two Mailer implementations exist:
//
//   - SMTPMailer delivers over SMTP using go-mail. Port 465 uses implicit
//     TLS; any other port upgrades with STARTTLS when the server offers it.
//   - LogMailer only logs the recipient. It is used when mail is disabled.
//
// # Configuration
//
//	mail:
//	  enabled: true
//	  host: "smtp.example.com"
//	  port: 587
//	  username: "pairing"
//	  password: ""        # or PAIRING_SMTP_PASSWORD
//	  from: "Device Pairing <no-reply@example.com>"
//
// Message bodies are never logged.
package mail
