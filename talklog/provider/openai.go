package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const maxRetries = 3

// Wait schedules between attempts. Variables so tests can shorten them.
var (
	rateLimitWaitTimes   = []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second}
	serverErrorWaitTimes = []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second}
)

// CallWithRetry runs call, retrying rate-limit and server errors with fixed back-off.
// Any other error is returned immediately.
func CallWithRetry[T any](ctx context.Context, call func(context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := call(ctx)
		if err == nil {
			return resp, nil
		}

		var wait time.Duration
		switch {
		case isRateLimitError(err):
			wait = rateLimitWaitTimes[attempt]
		case isServerError(err):
			wait = serverErrorWaitTimes[attempt]
		default:
			return zero, err
		}
		if attempt == maxRetries-1 {
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
	}
	return zero, fmt.Errorf("failed after %d attempts due to OpenAI API issues", maxRetries)
}

// NewClient builds an OpenAI client. An empty apiKey falls back to OPENAI_API_KEY.
func NewClient(apiKey string) (*openai.Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing OPENAI_API_KEY (or pass -api-key)")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &client, nil
}

// UploadFineTuneFile uploads a chat-format JSONL file for fine-tuning and returns the file ID.
func UploadFineTuneFile(ctx context.Context, client *openai.Client, path string) (string, error) {
	if client == nil {
		return "", errors.New("UploadFineTuneFile: client is nil")
	}

	obj, err := CallWithRetry(ctx, func(ctx context.Context) (*openai.FileObject, error) {
		// Reopen per attempt: a failed request may have consumed the reader.
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return client.Files.New(ctx, openai.FileNewParams{
			File:    f,
			Purpose: openai.FilePurposeFineTune,
		})
	})
	if err != nil {
		return "", fmt.Errorf("UploadFineTuneFile: %w", err)
	}
	return obj.ID, nil
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 500 {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

// GenerateSchema reflects a strict JSON schema (no additional properties, every field required)
// for T.
func GenerateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	schemaObj, err := schemaToMap(schema)
	if err != nil {
		panic(err)
	}
	ensureStrict(schemaObj)
	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]interface{}, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

func ensureStrict(schema map[string]interface{}) {
	if schemaType, ok := schema[typeKey].(string); ok && schemaType == "object" {
		schema[additionalPropertiesKey] = false

		if properties, ok := schema[propertiesKey].(map[string]interface{}); ok {
			var requiredFields []string
			for propName := range properties {
				requiredFields = append(requiredFields, propName)
			}
			if len(requiredFields) > 0 {
				sortStrings(requiredFields)
				schema[requiredKey] = requiredFields
			}
		}
	}

	if properties, ok := schema[propertiesKey].(map[string]interface{}); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]interface{}); ok {
				ensureStrict(propMap)
			}
		}
	}

	if items, ok := schema[itemsKey].(map[string]interface{}); ok {
		ensureStrict(items)
	}

	if additionalProps, ok := schema[additionalPropertiesKey].(map[string]interface{}); ok {
		ensureStrict(additionalProps)
	}
}

func sortStrings(s []string) {
	for i := 0; i < len(s); i++ {
		for j := i + 1; j < len(s); j++ {
			if s[j] < s[i] {
				s[i], s[j] = s[j], s[i]
			}
		}
	}
}
