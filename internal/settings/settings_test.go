// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/engagement-letters/pkg/types"
)

const sampleSettings = `[
    {"id": "processed", "name": "Processed files directory", "config_name": "PROCESSED_FILES_DIRECTORY", "type": "string", "value": "/srv/letters"},
    {"id": "retries", "name": "Retries", "config_name": "RETRIES", "type": "number", "value": 3},
    {"config_name": "COMPLIANCE_PARTNER_RATES", "type": "list", "value": [{"name": " Jane Roe ", "rate": "$300"}, {"name": "John Doe", "rate": "$280"}]},
    {"config_name": "COMPLIANCE_ASSOCIATE_RATES", "type": "string", "value": "$160-205"},
    {"config_name": "COMPLIANCE_BOOKKEEPING_RATES", "type": "string", "value": "$70-80"},
    {"config_name": "CONSULTING_ASSOCIATE_RATES", "type": "string", "value": null}
]`

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "user-config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	list, err := Load(writeSettings(t, sampleSettings))
	require.NoError(t, err)
	require.Len(t, list, 6)
	assert.Equal(t, "PROCESSED_FILES_DIRECTORY", list[0].ConfigName)
	assert.Equal(t, types.SettingNumber, list[1].Type)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "settings.yaml"))
	assert.ErrorContains(t, err, ".json extension")

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeSettings(t, "{not json"))
	assert.ErrorContains(t, err, "parsing settings")
}

func TestString(t *testing.T) {
	list, err := Load(writeSettings(t, sampleSettings))
	require.NoError(t, err)

	v, ok := String(list, ProcessedFilesDirectory)
	assert.True(t, ok)
	assert.Equal(t, "/srv/letters", v)

	v, ok = String(list, "RETRIES")
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	_, ok = String(list, "COMPLIANCE_PARTNER_RATES")
	assert.False(t, ok, "lists are not scalars")

	_, ok = String(list, "UNKNOWN")
	assert.False(t, ok)
}

func TestMerge(t *testing.T) {
	current, err := Load(writeSettings(t, sampleSettings))
	require.NoError(t, err)

	form := []types.Setting{
		{ConfigName: "RETRIES", Type: types.SettingNumber, Value: json.RawMessage(`"5"`)},
		{ConfigName: ProcessedFilesDirectory, Type: types.SettingString, Value: json.RawMessage(`"/tmp/out"`)},
		{ConfigName: "NOT_A_SETTING", Type: types.SettingString, Value: json.RawMessage(`"x"`)},
	}
	merged, err := Merge(current, form)
	require.NoError(t, err)
	require.Len(t, merged, len(current))

	assert.JSONEq(t, `5`, string(merged[1].Value))
	assert.JSONEq(t, `"/tmp/out"`, string(merged[0].Value))
	assert.Equal(t, "Retries", merged[1].Name, "labels are kept from the stored record")
	assert.JSONEq(t, `"/srv/letters"`, string(current[0].Value), "current is not modified")
}

func TestMerge_BadNumber(t *testing.T) {
	current := []types.Setting{{ConfigName: "RETRIES", Type: types.SettingNumber, Value: json.RawMessage(`3`)}}
	form := []types.Setting{{ConfigName: "RETRIES", Type: types.SettingNumber, Value: json.RawMessage(`"three"`)}}

	_, err := Merge(current, form)
	assert.ErrorContains(t, err, "RETRIES")
}

func TestSave_RoundTrip(t *testing.T) {
	path := writeSettings(t, sampleSettings)
	list, err := Load(path)
	require.NoError(t, err)

	list[0].Value = json.RawMessage(`"/data/processed"`)
	require.NoError(t, Save(path, list))

	again, err := Load(path)
	require.NoError(t, err)
	v, _ := String(again, ProcessedFilesDirectory)
	assert.Equal(t, "/data/processed", v)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestRateOptions(t *testing.T) {
	list, err := Load(writeSettings(t, sampleSettings))
	require.NoError(t, err)

	opts, err := RateOptions(list)
	require.NoError(t, err)
	assert.Equal(t, []types.PartnerRate{{Name: "Jane Roe", Rate: "$300"}, {Name: "John Doe", Rate: "$280"}}, opts.CompliancePartners)
	assert.Equal(t, "$160-205", opts.ComplianceAssociate)
	assert.Equal(t, "$70-80", opts.ComplianceBookkeeping)
	assert.Nil(t, opts.ConsultingPartners)
	assert.Empty(t, opts.ConsultingAssociate)
}

func TestRateOptions_WrongShape(t *testing.T) {
	list := []types.Setting{{ConfigName: string(types.CompliancePartnerRates), Type: types.SettingList, Value: json.RawMessage(`"Jane"`)}}
	_, err := RateOptions(list)
	assert.ErrorContains(t, err, "COMPLIANCE_PARTNER_RATES")
}

func TestLoadRateOptions_MissingFile(t *testing.T) {
	opts, err := LoadRateOptions(filepath.Join(t.TempDir(), "user-config.json"))
	require.NoError(t, err)
	assert.Equal(t, types.RateOptions{}, opts)
}
