package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// HTML is optional; Text is recommended as fallback. Template selects a
// canned message ("welcome") rendered by the worker from Data.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// TemplateWelcome is sent once after a successful registration.
const TemplateWelcome = "welcome"

// RenderWelcome builds the subject/text/html bodies for the welcome email.
func RenderWelcome(appName string, data map[string]any) (subject, text, html string) {
	username, _ := data["Username"].(string)
	if username == "" {
		username = "there"
	}
	subject = "Welcome to " + appName
	text = "Hi " + username + ",\n\n" +
		"Your account is ready. Set up your channel, grab a stream key and go live.\n"
	html = "<p>Hi <strong>" + username + "</strong>,</p>" +
		"<p>Your account is ready. Set up your channel, grab a stream key and go live.</p>"
	return subject, text, html
}
