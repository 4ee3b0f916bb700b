// Package fields maps dynamic form field definitions to rendering
// instructions. Everything in it is pure: identical input always yields an
// equal output, and unrecognised field types fall back to the plain text
// widget instead of erroring.
package fields

// Type tags one input of a dynamically configured form.
type Type string

const (
	TypeText        Type = "text"
	TypeTextarea    Type = "textarea"
	TypeEmail       Type = "email"
	TypePassword    Type = "password"
	TypeNumber      Type = "number"
	TypeDate        Type = "date"
	TypeTime        Type = "time"
	TypeSelect      Type = "select"
	TypeRadio       Type = "radio"
	TypeCheckbox    Type = "checkbox"
	TypeFile        Type = "file"
	TypeImage       Type = "image"
	TypeDocument    Type = "document"
	TypeSignature   Type = "signature"
	TypeRange       Type = "range"
	TypeSwitch      Type = "switch"
	TypeURL         Type = "url"
	TypeHidden      Type = "hidden"
	TypeTel         Type = "tel"
	TypeGeolocation Type = "geolocation"
)

// Widget identifies the display component the dashboard renders for a field.
type Widget string

const (
	WidgetTextInput   Widget = "text-input"
	WidgetTextarea    Widget = "textarea"
	WidgetSelect      Widget = "select"
	WidgetRadioGroup  Widget = "radio-group"
	WidgetCheckboxes  Widget = "checkbox-group"
	WidgetFileInput   Widget = "file-input"
	WidgetSignature   Widget = "signature-pad"
	WidgetSlider      Widget = "slider"
	WidgetSwitch      Widget = "switch-toggle"
	WidgetGeolocation Widget = "geolocation-picker"
)

// Definition is the metadata describing one form input, as stored on the
// upstream form resource.
type Definition struct {
	Type     Type     `json:"type"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Step     *float64 `json:"step,omitempty"`
	Radius   *float64 `json:"radius,omitempty"`
}

// Props is the resolved property bag a widget is rendered with.
type Props struct {
	Widget    Widget   `json:"widget"`
	Label     string   `json:"label"`
	Required  bool     `json:"required"`
	Variant   string   `json:"variant"`
	InputType string   `json:"input_type,omitempty"`
	Items     []string `json:"items,omitempty"`
	Multiple  bool     `json:"multiple,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Step      *float64 `json:"step,omitempty"`
	Accept    []string `json:"accept,omitempty"`
	Manual    bool     `json:"allow_manual,omitempty"`
	Radius    *float64 `json:"radius,omitempty"`
	Hidden    bool     `json:"hidden,omitempty"`
}

// defaultVariant is the visual variant applied to every widget.
const defaultVariant = "outlined"

// Range slider defaults, applied when the definition carries no overrides.
var (
	rangeMin  = 0.0
	rangeMax  = 100.0
	rangeStep = 10.0
)

// WidgetFor resolves the widget for a field type. Total over the recognised
// enumeration; anything else renders as a plain text input.
func WidgetFor(t Type) Widget {
	switch t {
	case TypeText, TypeEmail, TypePassword, TypeNumber, TypeDate, TypeTime, TypeURL, TypeHidden, TypeTel:
		return WidgetTextInput
	case TypeTextarea:
		return WidgetTextarea
	case TypeSelect:
		return WidgetSelect
	case TypeRadio:
		return WidgetRadioGroup
	case TypeCheckbox:
		return WidgetCheckboxes
	case TypeFile, TypeImage, TypeDocument:
		return WidgetFileInput
	case TypeSignature:
		return WidgetSignature
	case TypeRange:
		return WidgetSlider
	case TypeSwitch:
		return WidgetSwitch
	case TypeGeolocation:
		return WidgetGeolocation
	default:
		return WidgetTextInput
	}
}

// PropsFor builds the property bag for a definition: common base properties
// first, then the type-specific layer.
func PropsFor(def Definition) Props {
	p := Props{
		Widget:   WidgetFor(def.Type),
		Label:    def.Label,
		Required: def.Required,
		Variant:  defaultVariant,
	}

	switch def.Type {
	case TypeEmail, TypePassword, TypeNumber, TypeDate, TypeTime, TypeURL, TypeTel:
		p.InputType = string(def.Type)
	case TypeHidden:
		p.InputType = "hidden"
		p.Hidden = true
	case TypeSelect:
		p.Items = append([]string(nil), def.Options...)
		p.Multiple = true
	case TypeCheckbox:
		p.Items = append([]string(nil), def.Options...)
		p.Multiple = true
	case TypeRadio:
		p.Items = append([]string(nil), def.Options...)
	case TypeRange:
		p.Min = orDefault(def.Min, rangeMin)
		p.Max = orDefault(def.Max, rangeMax)
		p.Step = orDefault(def.Step, rangeStep)
	case TypeImage:
		p.Accept = []string{"image/*"}
	case TypeDocument:
		p.Accept = []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		}
	case TypeFile:
		p.Accept = []string{"*/*"}
	case TypeGeolocation:
		p.Manual = true
		if def.Radius != nil {
			radius := *def.Radius
			p.Radius = &radius
		}
	}

	return p
}

func orDefault(v *float64, fallback float64) *float64 {
	if v != nil {
		val := *v
		return &val
	}
	val := fallback
	return &val
}
