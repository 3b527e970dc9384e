package email

import "fmt"

// ReminderData fills the itinerary_reminder template.
type ReminderData struct {
	FirstName      string
	AttractionName string
	AreaName       string
	StartTime      string
}

func (d ReminderData) templateData() map[string]string {
	firstName := d.FirstName
	if firstName == "" {
		firstName = "there"
	}
	return map[string]string{
		"FirstName":      firstName,
		"AttractionName": d.AttractionName,
		"AreaName":       d.AreaName,
		"StartTime":      d.StartTime,
	}
}

func (c *Client) SendItineraryReminder(to string, data ReminderData) error {
	return c.SendEmail(
		to,
		fmt.Sprintf("Coming up: %s at %s", data.AttractionName, data.StartTime),
		TemplateItineraryReminder,
		data.templateData(),
	)
}
