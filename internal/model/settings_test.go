package model

import (
	"reflect"
	"testing"
)

func TestParseExperience(t *testing.T) {
	for _, code := range []string{"noExperience", "between1And3", "between3And6", "moreThan6"} {
		e, err := ParseExperience(code)
		if err != nil {
			t.Errorf("ParseExperience(%q): %v", code, err)
		}
		if string(e) != code {
			t.Errorf("ParseExperience(%q) = %q", code, e)
		}
	}

	if _, err := ParseExperience("senior"); err == nil {
		t.Error("ParseExperience(senior): expected error")
	}
}

func TestExperienceLabelRoundTrip(t *testing.T) {
	for _, label := range ExperienceLabels() {
		code, ok := ExperienceFromLabel(label)
		if !ok {
			t.Fatalf("ExperienceFromLabel(%q): not found", label)
		}
		if code.Label() != label {
			t.Errorf("label %q → code %q → label %q", label, code, code.Label())
		}
	}

	if _, ok := ExperienceFromLabel("10 years"); ok {
		t.Error("ExperienceFromLabel(10 years): expected miss")
	}
}

func TestPatchApply_PartialUpdate(t *testing.T) {
	base := DefaultSettings()

	salary := 250000
	got := Patch{SalaryMin: &salary}.Apply(base)

	if got.SalaryMin != 250000 {
		t.Errorf("SalaryMin = %d, want 250000", got.SalaryMin)
	}
	if !reflect.DeepEqual(got.Keywords, base.Keywords) {
		t.Errorf("Keywords changed: %v", got.Keywords)
	}
	if !reflect.DeepEqual(got.Locations, base.Locations) {
		t.Errorf("Locations changed: %v", got.Locations)
	}
	if got.Experience != base.Experience {
		t.Errorf("Experience changed: %v", got.Experience)
	}
}

func TestPatchApply_EmptyPatchIsNoop(t *testing.T) {
	base := Settings{
		Keywords:   []string{"Go", "Rust"},
		Locations:  []string{"Moscow"},
		SalaryMin:  120000,
		Experience: Experience3To6,
	}
	if got := (Patch{}).Apply(base); !reflect.DeepEqual(got, base) {
		t.Errorf("empty patch changed record: %+v", got)
	}
}

func TestDefaultSettings(t *testing.T) {
	d := DefaultSettings()
	if !reflect.DeepEqual(d.Keywords, []string{"Python"}) {
		t.Errorf("Keywords = %v", d.Keywords)
	}
	if !reflect.DeepEqual(d.Locations, []string{"Remote"}) {
		t.Errorf("Locations = %v", d.Locations)
	}
	if d.SalaryMin != 50000 {
		t.Errorf("SalaryMin = %d", d.SalaryMin)
	}
	if d.Experience != ExperienceNone {
		t.Errorf("Experience = %q", d.Experience)
	}
}
