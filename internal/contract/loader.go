package contract

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of the voice contract. Variant entries may be
// plain strings or mappings with text and optional tags; see variantDoc.
type document struct {
	ContractVersion string                                           `yaml:"contract_version"`
	Skeletons       map[Skeleton]map[Language]map[Section][]variantDoc `yaml:"skeletons"`
}

// variantDoc accepts either a bare string or {text: ..., tags: [...]}.
type variantDoc struct {
	Text string
	Tags []string
}

func (v *variantDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&v.Text)
	}
	var obj struct {
		Text string   `yaml:"text"`
		Tags []string `yaml:"tags"`
	}
	if err := node.Decode(&obj); err != nil {
		return err
	}
	if obj.Text == "" {
		return fmt.Errorf("variant entry must carry a non-empty text field")
	}
	v.Text = obj.Text
	v.Tags = obj.Tags
	return nil
}

// Load reads the contract document at path, validates it, and pins it against
// wantVersion. Every failure mode is wrapped in [ErrLoad].
func Load(path, wantVersion string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", ErrLoad, path, err)
	}
	defer f.Close()
	return LoadFromReader(f, wantVersion)
}

// LoadFromReader decodes and validates a contract document from r. Useful in
// tests where contracts are built from string literals.
func LoadFromReader(r io.Reader, wantVersion string) (*Store, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrLoad, err)
	}

	if doc.ContractVersion == "" {
		return nil, fmt.Errorf("%w: document declares no contract_version", ErrLoad)
	}
	if wantVersion != "" && doc.ContractVersion != wantVersion {
		return nil, fmt.Errorf("%w: contract_version %q does not match running engine's %q",
			ErrLoad, doc.ContractVersion, wantVersion)
	}

	pools := make(map[PoolKey][]VariantEntry)
	for sk, byLang := range doc.Skeletons {
		if !sk.IsValid() {
			return nil, fmt.Errorf("%w: unknown skeleton %q", ErrLoad, sk)
		}
		for lang, bySec := range byLang {
			if !lang.IsValid() {
				return nil, fmt.Errorf("%w: unknown language %q under skeleton %s", ErrLoad, lang, sk)
			}
			for sec, raw := range bySec {
				entries := make([]VariantEntry, 0, len(raw))
				for i, vd := range raw {
					if vd.Text == "" {
						return nil, fmt.Errorf("%w: empty variant %d in pool %s|%s|%s", ErrLoad, i, sk, lang, sec)
					}
					entries = append(entries, VariantEntry{ID: i, Text: vd.Text, Tags: vd.Tags})
				}
				pools[PoolKey{sk, lang, sec}] = entries
			}
		}
	}

	s := &Store{
		version: doc.ContractVersion,
		pools:   pools,
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	s.fingerprint = computeFingerprint(s.version, s.pools)
	return s, nil
}
