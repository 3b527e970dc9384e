package email

import "fmt"

// PreviewData holds sample values for rendering templates without sending.
var PreviewData = map[Template]map[string]string{
	TemplateItineraryReminder: ReminderData{
		FirstName:      "Dana",
		AttractionName: "Phantom's Revenge",
		AreaName:       "Lost Kennywood",
		StartTime:      "2023-06-01T10:00:00",
	}.templateData(),
}

// Preview renders a template with its sample data.
func Preview(name Template) (string, error) {
	data, ok := PreviewData[name]
	if !ok {
		return "", fmt.Errorf("no preview data for template %q", name)
	}
	return Render(name, data)
}
