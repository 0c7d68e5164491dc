//go:build mage

package main

const settingsFile = "user-config.json"

// defaultSettings is the settings file Init writes when none exists. The
// web UI shows one form field per record.
const defaultSettings = `[
    {
        "id": "processed-files-directory",
        "name": "Processed files directory",
        "config_name": "PROCESSED_FILES_DIRECTORY",
        "description": "Where updated letters, PDFs and signed PDFs are saved.",
        "type": "string",
        "value": "temp/complete"
    },
    {
        "id": "compliance-partner-rates",
        "name": "Compliance partner rates",
        "config_name": "COMPLIANCE_PARTNER_RATES",
        "description": "Partner names and hourly rates quoted in compliance letters.",
        "type": "list",
        "value": null
    },
    {
        "id": "compliance-associate-rates",
        "name": "Compliance associate rates",
        "config_name": "COMPLIANCE_ASSOCIATE_RATES",
        "description": "Hourly rate range for associates, e.g. \"$150 to $225\".",
        "type": "string",
        "value": ""
    },
    {
        "id": "compliance-bookkeeping-rates",
        "name": "Compliance bookkeeping rates",
        "config_name": "COMPLIANCE_BOOKKEEPING_RATES",
        "description": "Hourly rate range for bookkeeping staff.",
        "type": "string",
        "value": ""
    },
    {
        "id": "consulting-partner-rates",
        "name": "Consulting partner rates",
        "config_name": "CONSULTING_PARTNER_RATES",
        "description": "Partner names and hourly rates quoted in consulting letters.",
        "type": "list",
        "value": null
    },
    {
        "id": "consulting-associate-rates",
        "name": "Consulting associate rates",
        "config_name": "CONSULTING_ASSOCIATE_RATES",
        "description": "Hourly rate range for consulting associates.",
        "type": "string",
        "value": ""
    }
]
`
