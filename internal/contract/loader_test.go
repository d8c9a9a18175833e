package contract

import (
	"errors"
	"strings"
	"testing"
)

const minimalDoc = `
contract_version: "1.0.0"
skeletons:
  A:
    en:
      opener:
        - "Opener zero."
        - text: "Opener one."
          tags: [light]
      validation:
        - "Validation zero."
      closure:
        - "Closure only."
  B:
    en:
      opener: ["B opener."]
      closure: ["B closure one.", "B closure two."]
  C:
    en:
      opener: ["C opener."]
      closure: ["C closure."]
  D:
    en:
      opener: ["D opener."]
      action: ["Try one slow breath."]
      closure: ["D closure."]
`

func mustLoad(t *testing.T, doc, wantVersion string) *Store {
	t.Helper()
	s, err := LoadFromReader(strings.NewReader(doc), wantVersion)
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	return s
}

func TestLoadFromReader_IndexesPools(t *testing.T) {
	s := mustLoad(t, minimalDoc, "1.0.0")

	if s.Version() != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", s.Version())
	}

	opener := s.Variants(SkeletonA, LangEN, SectionOpener)
	if len(opener) != 2 {
		t.Fatalf("A|en|opener holds %d entries, want 2", len(opener))
	}
	if opener[0].ID != 0 || opener[0].Text != "Opener zero." {
		t.Errorf("entry 0 = %+v", opener[0])
	}
	if opener[1].ID != 1 || !opener[1].HasTag(TagLight) {
		t.Errorf("entry 1 = %+v, want id 1 with light tag", opener[1])
	}

	if !s.Has(SkeletonD, LangEN, SectionAction) {
		t.Error("D|en|action pool missing")
	}
	if s.Has(SkeletonA, LangHI, SectionOpener) {
		t.Error("A|hi|opener reported present, want absent")
	}
}

func TestLoadFromReader_VersionPinning(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader(minimalDoc), "2.0.0"); !errors.Is(err, ErrLoad) {
		t.Errorf("version mismatch error = %v, want ErrLoad", err)
	}

	// Empty pin accepts any declared version.
	if _, err := LoadFromReader(strings.NewReader(minimalDoc), ""); err != nil {
		t.Errorf("unpinned load: %v", err)
	}
}

func TestLoadFromReader_MissingVersionFails(t *testing.T) {
	doc := strings.Replace(minimalDoc, `contract_version: "1.0.0"`, "", 1)
	if _, err := LoadFromReader(strings.NewReader(doc), ""); !errors.Is(err, ErrLoad) {
		t.Errorf("error = %v, want ErrLoad", err)
	}
}

func TestLoadFromReader_AdviceScanIsWordAnchored(t *testing.T) {
	// Words that merely contain a token are legal outside D.
	doc := strings.Replace(minimalDoc, `"Validation zero."`,
		`"Somewhere in the country, a quiet pantry."`, 1)
	if _, err := LoadFromReader(strings.NewReader(doc), ""); err != nil {
		t.Errorf("embedded-token words rejected: %v", err)
	}

	// The bare token still fails.
	doc = strings.Replace(minimalDoc, `"Validation zero."`, `"Maybe try resting."`, 1)
	if _, err := LoadFromReader(strings.NewReader(doc), ""); !errors.Is(err, ErrLoad) {
		t.Errorf("bare advice token: error = %v, want ErrLoad", err)
	}
}

func TestLoadFromReader_StructuralFailures(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			"advice token outside D",
			strings.Replace(minimalDoc, `"Validation zero."`, `"You should rest."`, 1),
		},
		{
			"closure cardinality outside B",
			strings.Replace(minimalDoc, `closure:
        - "Closure only."`, `closure:
        - "Closure one."
        - "Closure two."`, 1),
		},
		{
			"opener over limit",
			strings.Replace(minimalDoc, `opener: ["C opener."]`,
				`opener: ["C1.", "C2.", "C3.", "C4."]`, 1),
		},
		{
			"action outside D",
			strings.Replace(minimalDoc, `validation:
        - "Validation zero."`, `action:
        - "One slow breath."`, 1),
		},
		{
			"unknown skeleton",
			strings.Replace(minimalDoc, "  D:", "  E:", 1),
		},
		{
			"unknown language",
			strings.Replace(minimalDoc, `  C:
    en:`, `  C:
    fr:`, 1),
		},
		{
			"missing required closure",
			strings.Replace(minimalDoc, `      closure: ["C closure."]`, "", 1),
		},
		{
			"empty variant text",
			strings.Replace(minimalDoc, `"Opener zero."`, `""`, 1),
		},
	}
	for _, tt := range tests {
		if _, err := LoadFromReader(strings.NewReader(tt.doc), ""); !errors.Is(err, ErrLoad) {
			t.Errorf("%s: error = %v, want ErrLoad", tt.name, err)
		}
	}
}

func TestLoadFromReader_BClosureMayHoldTwo(t *testing.T) {
	s := mustLoad(t, minimalDoc, "")
	if got := len(s.Variants(SkeletonB, LangEN, SectionClosure)); got != 2 {
		t.Errorf("B|en|closure holds %d entries, want 2", got)
	}
}

func TestFingerprint_StableAcrossLoads(t *testing.T) {
	a := mustLoad(t, minimalDoc, "")
	b := mustLoad(t, minimalDoc, "")

	if !strings.HasPrefix(a.Fingerprint(), "sha256:") {
		t.Errorf("fingerprint = %q, want sha256: prefix", a.Fingerprint())
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("same document produced different fingerprints")
	}

	changed := strings.Replace(minimalDoc, "Opener zero.", "Opener changed.", 1)
	c := mustLoad(t, changed, "")
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("changed document kept the same fingerprint")
	}
}

func TestLoad_ShippedContract(t *testing.T) {
	s, err := Load("../../configs/voice_contract.yaml", "1.0.0")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, sk := range Skeletons {
		for _, lang := range Languages {
			for _, sec := range SectionsFor(sk) {
				if !s.Has(sk, lang, sec) {
					t.Errorf("shipped contract missing pool %s|%s|%s", sk, lang, sec)
				}
			}
		}
	}

	// The skeleton C contract text composes the stillness constant used on
	// self-harm overrides; it must match the compiled-in C fallback.
	validation := s.Variants(SkeletonC, LangEN, SectionValidation)
	closure := s.Variants(SkeletonC, LangEN, SectionClosure)
	got := validation[0].Text + " " + closure[0].Text
	if want := "That sounds exhausting. We can just stay here for a moment."; got != want {
		t.Errorf("C stillness text = %q, want %q", got, want)
	}
}
