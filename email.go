package main

import (
	"fmt"
	"html/template"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ses"
)

const emailCharset = "UTF-8"

// EmailReport is what the email template renders: the assembled report plus
// the pieces that differ from the web dashboard (no chart, sanitized
// summary baked in).
type EmailReport struct {
	Report      *Report
	Rows        []ComparisonRow
	SummaryHTML template.HTML
}

// sendReportEmail renders the comparison to HTML and sends it via SES.
// Called by the filing watcher once per freshly-ingested filing.
func sendReportEmail(deps *Dependencies, report *Report) error {
	sublog := deps.logger.With().Str("cik", report.CurrentFiling.CIK).Logger()

	fromAddress := deps.secrets["report_from_email"]
	toAddress := deps.secrets["report_to_email"]
	if fromAddress == "" || toAddress == "" {
		return errEmailNotComplete
	}

	body, err := renderTemplateToString(deps, "email", EmailReport{
		Report:      report,
		Rows:        report.TopRows(deps.reportTopN),
		SummaryHTML: renderSummaryHTML(report.Summary),
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("13F report: %s, %s", report.CurrentFiling.CIK, report.CurrentFiling.QuarterLabel())

	svc := ses.New(deps.awssess)
	_, err = svc.SendEmail(&ses.SendEmailInput{
		Source: aws.String(fromAddress),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(toAddress)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{
				Charset: aws.String(emailCharset),
				Data:    aws.String(subject),
			},
			Body: &ses.Body{
				Html: &ses.Content{
					Charset: aws.String(emailCharset),
					Data:    aws.String(body),
				},
			},
		},
	})
	if err != nil {
		sublog.Error().Err(err).Msg("failed to send report email")
		return err
	}

	sublog.Info().Str("to", toAddress).Msg("report email sent")
	return nil
}
