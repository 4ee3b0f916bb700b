package fields

// CatalogEntry describes one field type for the form builder palette.
type CatalogEntry struct {
	Type        Type   `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Widget      Widget `json:"widget"`
}

// catalog lists every recognised field type in builder display order.
var catalog = []CatalogEntry{
	{TypeText, "Text", "Single-line text field", "blue", WidgetTextInput},
	{TypeTextarea, "Text area", "Multi-line text field", "blue", WidgetTextarea},
	{TypeEmail, "Email", "Email address field", "green", WidgetTextInput},
	{TypePassword, "Password", "Password field", "red", WidgetTextInput},
	{TypeNumber, "Number", "Numeric field", "orange", WidgetTextInput},
	{TypeDate, "Date", "Date picker", "purple", WidgetTextInput},
	{TypeTime, "Time", "Time picker", "purple", WidgetTextInput},
	{TypeSelect, "Select", "Drop-down list", "indigo", WidgetSelect},
	{TypeRadio, "Radio", "Radio buttons", "indigo", WidgetRadioGroup},
	{TypeCheckbox, "Checkbox", "Check boxes", "indigo", WidgetCheckboxes},
	{TypeImage, "Image", "Image upload (jpg, png, ...)", "amber", WidgetFileInput},
	{TypeDocument, "Document", "Document upload (PDF, Word, Excel, ...)", "deep-orange", WidgetFileInput},
	{TypeFile, "File", "Generic file upload", "deep-orange", WidgetFileInput},
	{TypeSignature, "Signature", "Digital signature", "pink", WidgetSignature},
	{TypeRange, "Range", "Range slider", "deep-purple", WidgetSlider},
	{TypeSwitch, "Switch", "On/off toggle", "teal", WidgetSwitch},
	{TypeURL, "URL", "Web address field", "light-blue", WidgetTextInput},
	{TypeHidden, "Hidden", "Hidden field", "grey", WidgetTextInput},
	{TypeTel, "Phone", "Telephone number field", "cyan", WidgetTextInput},
	{TypeGeolocation, "Geolocation", "Captures a geographic location, optionally restricted by radius or entered manually", "lime", WidgetGeolocation},
}

// Catalog returns the builder palette. The slice is a copy.
func Catalog() []CatalogEntry {
	return append([]CatalogEntry(nil), catalog...)
}

// Types returns the recognised field type enumeration.
func Types() []Type {
	out := make([]Type, len(catalog))
	for i, e := range catalog {
		out[i] = e.Type
	}
	return out
}

// ColorFor returns the palette color for a field type, grey for unknown tags.
func ColorFor(t Type) string {
	for _, e := range catalog {
		if e.Type == t {
			return e.Color
		}
	}
	return "grey"
}
