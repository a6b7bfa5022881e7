package config

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/ini.v1"
)

// iniCodec lets viper read and write INI files. Each section becomes a nested map,
// keys of the default section are kept at the top level. Comments are whole lines only,
// so secrets and file ids may contain '#' or ';'.
type iniCodec struct{}

func (iniCodec) Decode(b []byte, v map[string]any) error {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, b)
	if err != nil {
		return err
	}

	for _, section := range f.Sections() {
		keys := section.KeysHash()

		if section.Name() == ini.DefaultSection {
			for k, value := range keys {
				v[k] = value
			}
			continue
		}

		m := make(map[string]any, len(keys))
		for k, value := range keys {
			m[k] = value
		}
		v[section.Name()] = m
	}

	return nil
}

func (iniCodec) Encode(v map[string]any) ([]byte, error) {
	f := ini.Empty()

	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch value := v[name].(type) {
		case map[string]any:
			section, err := f.NewSection(name)
			if err != nil {
				return nil, err
			}

			keys := make([]string, 0, len(value))
			for k := range value {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, k := range keys {
				if _, err := section.NewKey(k, fmt.Sprint(value[k])); err != nil {
					return nil, err
				}
			}

		default:
			if _, err := f.Section(ini.DefaultSection).NewKey(name, fmt.Sprint(value)); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
