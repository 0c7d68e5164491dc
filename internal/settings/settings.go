// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package settings persists the user settings edited in the web UI. The file
// is a flat JSON list of {config_name, type, value} records; the rollover
// rate options and the processed-files directory are read from it.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/engagement-letters/pkg/types"
)

// ProcessedFilesDirectory is the setting that overrides paths.processed_dir.
const ProcessedFilesDirectory = "PROCESSED_FILES_DIRECTORY"

// Load reads the settings file at path.
func Load(path string) ([]types.Setting, error) {
	if filepath.Ext(path) != ".json" {
		return nil, fmt.Errorf("settings file %s does not have a .json extension", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	var list []types.Setting
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return list, nil
}

// Save writes settings to path as indented JSON, replacing the file
// atomically.
func Save(path string, list []types.Setting) error {
	data, err := json.MarshalIndent(list, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("creating temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Merge returns current with the values of form applied. Records are
// matched by config_name; form records with no counterpart in current are
// ignored. Values of number settings are stored as integers.
func Merge(current, form []types.Setting) ([]types.Setting, error) {
	byName := make(map[string]types.Setting, len(form))
	for _, f := range form {
		byName[f.ConfigName] = f
	}

	out := make([]types.Setting, len(current))
	for i, s := range current {
		out[i] = s
		f, ok := byName[s.ConfigName]
		if !ok {
			continue
		}
		value := f.Value
		if f.Type == types.SettingNumber {
			n, err := numberValue(f.Value)
			if err != nil {
				return nil, fmt.Errorf("setting %s: %w", s.ConfigName, err)
			}
			value = json.RawMessage(strconv.Itoa(n))
		}
		out[i].Value = value
	}
	return out, nil
}

// numberValue accepts either a JSON number or a numeric string, since HTML
// form fields post numbers as text.
func numberValue(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("value %s is not a number", raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("value %q is not a number", s)
	}
	return n, nil
}

// String returns the scalar value of the named setting. Numbers are
// returned in decimal form.
func String(list []types.Setting, name string) (string, bool) {
	for _, s := range list {
		if s.ConfigName != name {
			continue
		}
		var v string
		if err := json.Unmarshal(s.Value, &v); err == nil {
			return v, true
		}
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(s.Value))
		dec.UseNumber()
		if err := dec.Decode(&n); err == nil {
			return n.String(), true
		}
		return "", false
	}
	return "", false
}

// RateOptions builds the rollover rate options from the rate settings.
// Missing settings leave the corresponding option unset so the documented
// defaults apply.
func RateOptions(list []types.Setting) (types.RateOptions, error) {
	var opts types.RateOptions
	for _, s := range list {
		var err error
		switch types.RateKey(s.ConfigName) {
		case types.CompliancePartnerRates:
			opts.CompliancePartners, err = partnerList(s)
		case types.ConsultingPartnerRates:
			opts.ConsultingPartners, err = partnerList(s)
		case types.ComplianceAssociateRates:
			opts.ComplianceAssociate, err = rateString(s)
		case types.ComplianceBookkeepingRates:
			opts.ComplianceBookkeeping, err = rateString(s)
		case types.ConsultingAssociateRates:
			opts.ConsultingAssociate, err = rateString(s)
		}
		if err != nil {
			return types.RateOptions{}, err
		}
	}
	return opts, nil
}

func partnerList(s types.Setting) ([]types.PartnerRate, error) {
	if len(s.Value) == 0 || string(s.Value) == "null" {
		return nil, nil
	}
	list := []types.PartnerRate{}
	if err := json.Unmarshal(s.Value, &list); err != nil {
		return nil, fmt.Errorf("setting %s: expected a list of {name, rate}: %w", s.ConfigName, err)
	}
	for i := range list {
		list[i].Name = strings.TrimSpace(list[i].Name)
		list[i].Rate = strings.TrimSpace(list[i].Rate)
	}
	return list, nil
}

func rateString(s types.Setting) (string, error) {
	if len(s.Value) == 0 || string(s.Value) == "null" {
		return "", nil
	}
	var v string
	if err := json.Unmarshal(s.Value, &v); err != nil {
		return "", fmt.Errorf("setting %s: expected a string: %w", s.ConfigName, err)
	}
	return strings.TrimSpace(v), nil
}

// LoadRateOptions reads path and builds rate options from it. A missing
// settings file yields the default rate options.
func LoadRateOptions(path string) (types.RateOptions, error) {
	list, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.RateOptions{}, nil
		}
		return types.RateOptions{}, err
	}
	return RateOptions(list)
}
