package fields

import (
	"reflect"
	"testing"
)

func TestWidgetFor_RecognisedTypes(t *testing.T) {
	cases := map[Type]Widget{
		TypeText:        WidgetTextInput,
		TypeTextarea:    WidgetTextarea,
		TypeEmail:       WidgetTextInput,
		TypePassword:    WidgetTextInput,
		TypeNumber:      WidgetTextInput,
		TypeDate:        WidgetTextInput,
		TypeTime:        WidgetTextInput,
		TypeSelect:      WidgetSelect,
		TypeRadio:       WidgetRadioGroup,
		TypeCheckbox:    WidgetCheckboxes,
		TypeFile:        WidgetFileInput,
		TypeImage:       WidgetFileInput,
		TypeDocument:    WidgetFileInput,
		TypeSignature:   WidgetSignature,
		TypeRange:       WidgetSlider,
		TypeSwitch:      WidgetSwitch,
		TypeURL:         WidgetTextInput,
		TypeHidden:      WidgetTextInput,
		TypeTel:         WidgetTextInput,
		TypeGeolocation: WidgetGeolocation,
	}
	for typ, want := range cases {
		if got := WidgetFor(typ); got != want {
			t.Fatalf("WidgetFor(%s) = %s, want %s", typ, got, want)
		}
	}
}

func TestWidgetFor_UnknownFallsBackToText(t *testing.T) {
	for _, typ := range []Type{"", "matrix", "likert-scale"} {
		if got := WidgetFor(typ); got != WidgetTextInput {
			t.Fatalf("WidgetFor(%q) = %s, want %s", typ, got, WidgetTextInput)
		}
	}
}

func TestWidgetFor_CoversCatalog(t *testing.T) {
	for _, entry := range Catalog() {
		if got := WidgetFor(entry.Type); got != entry.Widget {
			t.Fatalf("catalog widget mismatch for %s: WidgetFor=%s catalog=%s", entry.Type, got, entry.Widget)
		}
	}
}

func TestPropsFor_Select(t *testing.T) {
	def := Definition{Type: TypeSelect, Label: "Country", Required: true, Options: []string{"MX", "US"}}
	p := PropsFor(def)

	if p.Widget != WidgetSelect || p.Label != "Country" || !p.Required {
		t.Fatalf("unexpected base props: %+v", p)
	}
	if !p.Multiple {
		t.Fatalf("select must allow multiple values")
	}
	if !reflect.DeepEqual(p.Items, []string{"MX", "US"}) {
		t.Fatalf("unexpected items: %v", p.Items)
	}
	if p.Variant != "outlined" {
		t.Fatalf("unexpected variant: %q", p.Variant)
	}

	// Items are a copy; mutating them must not leak into the definition.
	p.Items[0] = "changed"
	if def.Options[0] != "MX" {
		t.Fatalf("props must not alias the definition options")
	}
}

func TestPropsFor_CheckboxAndRadio(t *testing.T) {
	options := []string{"a", "b"}

	checkbox := PropsFor(Definition{Type: TypeCheckbox, Options: options})
	if !checkbox.Multiple {
		t.Fatalf("checkbox group must allow multiple values")
	}

	radio := PropsFor(Definition{Type: TypeRadio, Options: options})
	if radio.Multiple {
		t.Fatalf("radio group is single choice")
	}
	if !reflect.DeepEqual(radio.Items, options) {
		t.Fatalf("unexpected radio items: %v", radio.Items)
	}
}

func TestPropsFor_RangeDefaults(t *testing.T) {
	p := PropsFor(Definition{Type: TypeRange, Label: "Score"})
	if p.Min == nil || *p.Min != 0 {
		t.Fatalf("expected default min 0, got %v", p.Min)
	}
	if p.Max == nil || *p.Max != 100 {
		t.Fatalf("expected default max 100, got %v", p.Max)
	}
	if p.Step == nil || *p.Step != 10 {
		t.Fatalf("expected default step 10, got %v", p.Step)
	}
}

func TestPropsFor_RangeOverrides(t *testing.T) {
	min, max, step := 10.0, 20.0, 0.5
	p := PropsFor(Definition{Type: TypeRange, Min: &min, Max: &max, Step: &step})
	if *p.Min != 10 || *p.Max != 20 || *p.Step != 0.5 {
		t.Fatalf("expected overrides honoured, got min=%v max=%v step=%v", *p.Min, *p.Max, *p.Step)
	}
}

func TestPropsFor_FileAccept(t *testing.T) {
	if got := PropsFor(Definition{Type: TypeImage}).Accept; !reflect.DeepEqual(got, []string{"image/*"}) {
		t.Fatalf("unexpected image accept list: %v", got)
	}
	if got := PropsFor(Definition{Type: TypeFile}).Accept; !reflect.DeepEqual(got, []string{"*/*"}) {
		t.Fatalf("unexpected file accept list: %v", got)
	}
	doc := PropsFor(Definition{Type: TypeDocument}).Accept
	if len(doc) == 0 || doc[0] != "application/pdf" {
		t.Fatalf("unexpected document accept list: %v", doc)
	}
}

func TestPropsFor_InputTypes(t *testing.T) {
	for _, typ := range []Type{TypeEmail, TypePassword, TypeNumber, TypeDate, TypeTime, TypeURL, TypeTel} {
		if got := PropsFor(Definition{Type: typ}).InputType; got != string(typ) {
			t.Fatalf("PropsFor(%s).InputType = %q", typ, got)
		}
	}

	hidden := PropsFor(Definition{Type: TypeHidden})
	if hidden.InputType != "hidden" || !hidden.Hidden {
		t.Fatalf("unexpected hidden props: %+v", hidden)
	}
}

func TestPropsFor_Geolocation(t *testing.T) {
	p := PropsFor(Definition{Type: TypeGeolocation})
	if p.Widget != WidgetGeolocation || !p.Manual {
		t.Fatalf("unexpected geolocation props: %+v", p)
	}
	if p.Radius != nil {
		t.Fatalf("radius must stay unset without a restriction, got %v", *p.Radius)
	}

	radius := 500.0
	restricted := PropsFor(Definition{Type: TypeGeolocation, Radius: &radius})
	if restricted.Radius == nil || *restricted.Radius != 500 {
		t.Fatalf("expected radius restriction carried through, got %v", restricted.Radius)
	}
}

func TestPropsFor_Pure(t *testing.T) {
	def := Definition{Type: TypeSelect, Label: "x", Options: []string{"1", "2"}}
	if !reflect.DeepEqual(PropsFor(def), PropsFor(def)) {
		t.Fatalf("identical definitions must yield equal props")
	}
}

func TestColorFor(t *testing.T) {
	if got := ColorFor(TypeSignature); got != "pink" {
		t.Fatalf("ColorFor(signature) = %q", got)
	}
	if got := ColorFor("nonsense"); got != "grey" {
		t.Fatalf("unknown types default to grey, got %q", got)
	}
}
