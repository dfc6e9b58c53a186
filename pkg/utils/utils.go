package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

// GetSchemaFromConfig reflects a JSON schema from a config struct.
func GetSchemaFromConfig(config any) (string, error) {
	schema := jsonschema.Reflect(config)

	jsonSchemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// RoundTo2 rounds a price or money value to two decimal places using
// decimal arithmetic to avoid float drift at the persistence boundary.
func RoundTo2(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
