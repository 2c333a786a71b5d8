package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// FeedbackRequest is the data rendered into a feedback request email.
type FeedbackRequest struct {
	ToEmail     string
	ToName      string
	FromName    string
	FromEmail   string
	QuarterName string
	QuarterYear int
	Message     string
	FeedbackURL string
}

const feedbackHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Feedback Request</h2>
    <p>Hi {{.ToName}},</p>
    <p><strong>{{.FromName}}</strong> has asked for your feedback for <strong>{{.QuarterName}} {{.QuarterYear}}</strong>.</p>
    {{- if .Message}}
    <blockquote style="border-left: 4px solid #2563eb; margin: 16px 0; padding-left: 12px;">{{.Message}}</blockquote>
    {{- end}}
    <p><a href="{{.FeedbackURL}}" style="background: #2563eb; color: #fff; padding: 10px 18px; border-radius: 4px; text-decoration: none;">Provide feedback</a></p>
    <p style="font-size: 12px; color: #666;">Or open this link: {{.FeedbackURL}}</p>
  </div>
</body>
</html>
`

const feedbackText = `Hi {{.ToName}},

{{.FromName}} has asked for your feedback for {{.QuarterName}} {{.QuarterYear}}.
{{- if .Message}}

Message:
{{.Message}}
{{- end}}

Provide your feedback here: {{.FeedbackURL}}
`

var (
	feedbackHTMLTemplate = htmltemplate.Must(htmltemplate.New("feedback_html").Parse(feedbackHTML))
	feedbackTextTemplate = texttemplate.Must(texttemplate.New("feedback_text").Parse(feedbackText))
)

func FeedbackRequestSubject(quarterName string, quarterYear int) string {
	return fmt.Sprintf("Feedback Request for %s %d", quarterName, quarterYear)
}

// RenderFeedbackRequest builds the message for one colleague. From is left
// to the caller; the requester becomes the reply-to address.
func RenderFeedbackRequest(req FeedbackRequest) (Message, error) {
	var html, text bytes.Buffer
	if err := feedbackHTMLTemplate.Execute(&html, req); err != nil {
		return Message{}, fmt.Errorf("render html: %w", err)
	}
	if err := feedbackTextTemplate.Execute(&text, req); err != nil {
		return Message{}, fmt.Errorf("render text: %w", err)
	}
	return Message{
		ReplyTo: req.FromEmail,
		To:      req.ToEmail,
		ToName:  req.ToName,
		Subject: FeedbackRequestSubject(req.QuarterName, req.QuarterYear),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
