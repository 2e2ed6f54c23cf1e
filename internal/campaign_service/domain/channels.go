package domain

// Channel is a role-based email address category.
type Channel string

const (
	ChannelPrimary Channel = "primary"
	ChannelSupport Channel = "support"
	ChannelInfoSec Channel = "infoSec"
	ChannelPrivacy Channel = "privacy"
)

// Known reports whether c is one of the recognised channel keys.
func (c Channel) Known() bool {
	switch c {
	case ChannelPrimary, ChannelSupport, ChannelInfoSec, ChannelPrivacy:
		return true
	}
	return false
}

// MailTemplate identifies the transport-side template used to wrap a message.
type MailTemplate string

const MailTemplateCampaignReminder MailTemplate = "campaign-reminder"

// MailContent is the payload handed to the mail transport.
type MailContent struct {
	From    string
	Subject string
	Body    string
}

// UserCode maps a placeholder code onto a user property.
type UserCode struct {
	Code  string
	Value func(User) string
}

// EmailCode is always substituted with the recipient address.
const EmailCode = "EMAIL"

// UserCodes are the user placeholders recognised in email bodies, e.g. [[FIRST_NAME]].
var UserCodes = []UserCode{
	{Code: "FIRST_NAME", Value: func(u User) string { return u.FirstName }},
	{Code: "LAST_NAME", Value: func(u User) string { return u.LastName }},
	{Code: "FULL_NAME", Value: func(u User) string { return u.FullName }},
	{Code: "PHONE_NUMBER", Value: func(u User) string { return u.PhoneNumber }},
}
