package notification

import (
	"context"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sesTypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snsTypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	e164Pattern  = regexp.MustCompile(`^\+[1-9][0-9]{8,14}$`)
)

// NormalizePhone returns the E.164 form of a phone number. Local Tanzanian
// numbers ("0712...") get the +255 prefix. It returns "" when the number is
// unusable.
func NormalizePhone(phone string) string {
	p := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	switch {
	case strings.HasPrefix(p, "00"):
		p = "+" + p[2:]
	case strings.HasPrefix(p, "0") && len(p) == 10:
		p = "+255" + p[1:]
	case strings.HasPrefix(p, "255"):
		p = "+" + p
	}
	if !e164Pattern.MatchString(p) {
		return ""
	}
	return p
}

func (s *DefaultNotificationService) SendEmail(ctx context.Context, to, subject, content string) bool {
	to = strings.TrimSpace(to)
	if !emailPattern.MatchString(to) {
		s.logger.Warn("email not sent: invalid address", zap.String("to", to))
		recordDispatch(channelEmail, outcomeSkipped)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	_, err := s.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.opts.EmailFrom),
		Destination: &sesTypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sesTypes.Message{
			Subject: &sesTypes.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &sesTypes.Body{
				Html: &sesTypes.Content{Data: aws.String(content), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		s.logger.Error("email send failed", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		recordDispatch(channelEmail, outcomeFailed)
		return false
	}
	recordDispatch(channelEmail, outcomeSent)
	return true
}

func (s *DefaultNotificationService) SendSMS(ctx context.Context, to, message string) bool {
	phone := NormalizePhone(to)
	if phone == "" {
		s.logger.Warn("sms not sent: invalid phone number", zap.String("to", to))
		recordDispatch(channelSMS, outcomeSkipped)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	_, err := s.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
		MessageAttributes: map[string]snsTypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {DataType: aws.String("String"), StringValue: aws.String(s.opts.SMSSenderID)},
			"AWS.SNS.SMS.SMSType":  {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	})
	if err != nil {
		s.logger.Error("sms send failed", zap.String("to", phone), zap.Error(err))
		recordDispatch(channelSMS, outcomeFailed)
		return false
	}
	recordDispatch(channelSMS, outcomeSent)
	return true
}
